package views

import (
	"net/url"

	"golang.org/x/text/message"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/query"
	"github.com/foxzi/multiverse/internal/viewer"
)

// LanguageLink is one entry of the language switcher
type LanguageLink struct {
	Tag    string
	Label  string
	Href   string
	Active bool
}

// Base carries what every page needs: language and a message printer
type Base struct {
	Lang      string
	Languages []LanguageLink
	printer   *message.Printer
}

// NewBase creates the shared page data
func NewBase(lang string, languages []LanguageLink, printer *message.Printer) Base {
	return Base{Lang: lang, Languages: languages, printer: printer}
}

// T translates a message key
func (b Base) T(key string, args ...any) string {
	if b.printer == nil {
		return key
	}
	return b.printer.Sprintf(key, args...)
}

// LanguageHref links to the current query in another language
func LanguageHref(path string, f catalog.FilterSet, tag string) string {
	v := query.Values(f)
	v.Set("lang", tag)
	return (&url.URL{Path: path, RawQuery: v.Encode()}).String()
}

// SidebarOption is one choice of a single-select filter
type SidebarOption struct {
	Label  string
	Href   string
	Active bool
}

// SidebarGroup is one single-select filter
type SidebarGroup struct {
	Key          string
	Title        string
	Current      string
	CurrentLabel string
	Options      []SidebarOption
}

// Hidden is a form field carried through the name search
type Hidden struct {
	Name  string
	Value string
}

// Sidebar is the filter panel
type Sidebar struct {
	Name          string
	NameClearHref string
	Hidden        []Hidden
	Groups        []SidebarGroup
	HasActive     bool
	ClearHref     string
}

// ActiveFilter is one badge of the active filter summary
type ActiveFilter struct {
	Key        string
	Title      string
	Value      string
	Label      string
	RemoveHref string
}

// CatalogPage is the data for the character list page
type CatalogPage struct {
	Base
	Query       string
	State       string
	Loading     bool
	Error       string
	Count       int
	Sidebar     Sidebar
	Active      []ActiveFilter
	Table       Table
	Detail      Detail
	CloseHref   string
	RetryAction string
	RefreshHref string
}

// CharacterPage is the data for the standalone character page
type CharacterPage struct {
	Base
	Detail   Detail
	BackHref string
}

// NewCatalogPage builds the list page for a controller snapshot
func NewCatalogPage(base Base, snap viewer.Snapshot) CatalogPage {
	f := snap.Filters
	encoded := query.Encode(f)

	return CatalogPage{
		Base:        base,
		Query:       encoded,
		State:       snap.State.String(),
		Loading:     snap.Loading,
		Error:       snap.Error,
		Count:       snap.Page.Count,
		Sidebar:     NewSidebar(f),
		Active:      ActiveFilters(f),
		Table:       NewTable(DefaultColumns, snap),
		Detail:      NewDetail(snap.Selection),
		CloseHref:   CloseHref(f),
		RetryAction: "/retry?" + encoded,
		RefreshHref: "/?" + encoded,
	}
}

// NewCharacterPage builds the permalink page for c
func NewCharacterPage(base Base, c catalog.Character) CharacterPage {
	d := CharacterDetail(c)
	d.Visible = true
	return CharacterPage{Base: base, Detail: d, BackHref: ClearHref()}
}

// NewSidebar builds the filter panel for f
func NewSidebar(f catalog.FilterSet) Sidebar {
	s := Sidebar{
		Name:          f.Name,
		NameClearHref: FilterHref(f, catalog.KeyName, f.Name),
		HasActive:     f.HasActiveFilters(),
		ClearHref:     ClearHref(),
	}

	for _, g := range catalog.FilterGroups {
		current := f.Get(g.Key)
		if current != "" {
			s.Hidden = append(s.Hidden, Hidden{Name: g.Key, Value: current})
		}

		group := SidebarGroup{
			Key:     g.Key,
			Title:   g.Title,
			Current: current,
		}
		if current != "" {
			group.CurrentLabel = g.OptionLabel(current)
		}
		for _, o := range g.Options {
			group.Options = append(group.Options, SidebarOption{
				Label:  o.Label,
				Href:   FilterHref(f, g.Key, o.Value),
				Active: o.Value == current,
			})
		}
		s.Groups = append(s.Groups, group)
	}

	return s
}

// ActiveFilters lists the non-empty filters with a link removing each
func ActiveFilters(f catalog.FilterSet) []ActiveFilter {
	var active []ActiveFilter

	if f.Name != "" {
		active = append(active, ActiveFilter{
			Key:        catalog.KeyName,
			Title:      "filter.name",
			Value:      f.Name,
			RemoveHref: FilterHref(f, catalog.KeyName, f.Name),
		})
	}

	for _, g := range catalog.FilterGroups {
		value := f.Get(g.Key)
		if value == "" {
			continue
		}
		label := g.OptionLabel(value)
		if label == value {
			label = ""
		}
		active = append(active, ActiveFilter{
			Key:        g.Key,
			Title:      g.Title,
			Value:      value,
			Label:      label,
			RemoveHref: FilterHref(f, g.Key, value),
		})
	}

	return active
}
