package views

import (
	"strconv"
	"strings"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/query"
	"github.com/foxzi/multiverse/internal/viewer"
)

// Column keys
const (
	ColumnName    = "name"
	ColumnStatus  = "status"
	ColumnSpecies = "species"
	ColumnGender  = "gender"
	ColumnActions = "actions"
)

// Column describes one table column. Title is a message key.
type Column struct {
	Key   string
	Title string
}

// DefaultColumns is the character table layout
var DefaultColumns = []Column{
	{Key: ColumnName, Title: "column.name"},
	{Key: ColumnStatus, Title: "column.status"},
	{Key: ColumnSpecies, Title: "column.species"},
	{Key: ColumnGender, Title: "column.gender"},
	{Key: ColumnActions, Title: "column.actions"},
}

// Cell is one rendered table cell. Label, when set, is a message key
// that replaces Text.
type Cell struct {
	Column string
	Text   string
	Label  string
	Image  string
	Badge  string
	Href   string
}

// Row is one character in the table
type Row struct {
	ID    int
	Cells []Cell
}

// Pagination holds the Previous/Next controls
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	PrevHref     string
	NextHref     string
	PrevDisabled bool
	NextDisabled bool
}

// Table is the view model of the character table
type Table struct {
	Columns    []Column
	Rows       []Row
	Pagination Pagination
	Loading    bool
}

// NewTable builds the table for a controller snapshot
func NewTable(columns []Column, snap viewer.Snapshot) Table {
	t := Table{
		Columns:    columns,
		Rows:       make([]Row, 0, len(snap.Page.Characters)),
		Pagination: NewPagination(snap.Filters, snap.Page, snap.Loading),
		Loading:    snap.Loading,
	}

	for _, c := range snap.Page.Characters {
		row := Row{ID: c.ID, Cells: make([]Cell, 0, len(columns))}
		for _, col := range columns {
			row.Cells = append(row.Cells, newCell(col, c, snap.Filters))
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

// NewPagination derives the pagination controls. Both buttons are
// disabled while a fetch is outstanding.
func NewPagination(f catalog.FilterSet, page catalog.PageResult, loading bool) Pagination {
	current := page.CurrentPage
	if current < 1 {
		current = 1
	}
	total := page.TotalPages
	if total < 1 {
		total = 1
	}

	p := Pagination{
		CurrentPage:  current,
		TotalPages:   total,
		PrevDisabled: !page.HasPrev || loading,
		NextDisabled: !page.HasNext || loading,
	}
	if !p.PrevDisabled {
		p.PrevHref = PageHref(f, current-1)
	}
	if !p.NextDisabled {
		p.NextHref = PageHref(f, current+1)
	}
	return p
}

func newCell(col Column, c catalog.Character, f catalog.FilterSet) Cell {
	switch col.Key {
	case ColumnName:
		return Cell{Column: col.Key, Text: c.Name, Image: c.Image}
	case ColumnStatus:
		return Cell{
			Column: col.Key,
			Text:   c.Status,
			Label:  StatusLabel(c.Status),
			Badge:  StatusVariant(c.Status),
		}
	case ColumnSpecies:
		return Cell{Column: col.Key, Text: c.Species}
	case ColumnGender:
		return Cell{Column: col.Key, Text: strings.ToLower(c.Gender), Label: GenderLabel(c.Gender)}
	case ColumnActions:
		return Cell{Column: col.Key, Label: "action.view_details", Href: SelectHref(f, c.ID)}
	default:
		return Cell{Column: col.Key}
	}
}

// StatusVariant maps a status onto a badge variant
func StatusVariant(status string) string {
	switch strings.ToLower(status) {
	case "alive":
		return "success"
	case "dead":
		return "destructive"
	default:
		return "secondary"
	}
}

// StatusLabel returns the message key for a status
func StatusLabel(status string) string {
	switch strings.ToLower(status) {
	case "alive", "dead", "unknown":
		return "status." + strings.ToLower(status)
	}
	return ""
}

// GenderLabel returns the message key for a gender
func GenderLabel(gender string) string {
	switch strings.ToLower(gender) {
	case "female", "male", "genderless", "unknown":
		return "gender." + strings.ToLower(gender)
	}
	return ""
}

// PageHref links to page n of f. Pagination and filters share the
// same encoder so the address bar is always canonical.
func PageHref(f catalog.FilterSet, n int) string {
	return "/?" + query.Encode(f.WithPage(n))
}

// FilterHref links to f with key set to value. Choosing the value that
// is already active clears it.
func FilterHref(f catalog.FilterSet, key, value string) string {
	if f.Get(key) == value {
		value = ""
	}
	return "/?" + query.Encode(f.With(key, value))
}

// ClearHref links to the unconstrained first page
func ClearHref() string {
	return "/?" + query.Encode(catalog.DefaultFilterSet())
}

// SelectHref opens the detail view for id while keeping f
func SelectHref(f catalog.FilterSet, id int) string {
	return "/select/" + strconv.Itoa(id) + "?" + query.Encode(f)
}

// CloseHref dismisses the detail view while keeping f
func CloseHref(f catalog.FilterSet) string {
	return "/close?" + query.Encode(f)
}
