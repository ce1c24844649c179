package views

import (
	"math"
	"strconv"
	"time"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/viewer"
)

// Detail is the view model of one character's full record
type Detail struct {
	Visible       bool
	ID            int
	Name          string
	Image         string
	Status        string
	StatusLabel   string
	StatusVariant string
	Species       string
	Type          string
	Gender        string
	GenderLabel   string
	Origin        string
	Location      string
	EpisodeCount  int
	FirstEpisode  string
	LastEpisode   string
	ShowLast      bool
	Progress      int
	Created       time.Time
	Permalink     string
}

// NewDetail builds the overlay for a selection. A hidden or empty
// selection yields a zero Detail with Visible false.
func NewDetail(sel viewer.Selection) Detail {
	if !sel.Visible || sel.Character == nil {
		return Detail{}
	}
	d := CharacterDetail(*sel.Character)
	d.Visible = true
	return d
}

// CharacterDetail builds the detail record for c
func CharacterDetail(c catalog.Character) Detail {
	count := c.EpisodeCount()
	return Detail{
		ID:            c.ID,
		Name:          c.Name,
		Image:         c.Image,
		Status:        c.Status,
		StatusLabel:   StatusLabel(c.Status),
		StatusVariant: StatusVariant(c.Status),
		Species:       c.Species,
		Type:          c.Type,
		Gender:        c.Gender,
		GenderLabel:   GenderLabel(c.Gender),
		Origin:        c.Origin.Name,
		Location:      c.Location.Name,
		EpisodeCount:  count,
		FirstEpisode:  c.FirstEpisode(),
		LastEpisode:   c.LastEpisode(),
		ShowLast:      count > 1,
		Progress:      EpisodeProgress(count),
		Created:       c.Created,
		Permalink:     CharacterHref(c.ID),
	}
}

// EpisodeProgress is the share of all episodes a character appears in,
// as a whole percentage capped at 100
func EpisodeProgress(count int) int {
	if count <= 0 {
		return 0
	}
	p := float64(count) / catalog.TotalEpisodes * 100
	return int(math.Round(math.Min(p, 100)))
}

// CharacterHref is the permalink of a character
func CharacterHref(id int) string {
	return "/characters/" + strconv.Itoa(id)
}
