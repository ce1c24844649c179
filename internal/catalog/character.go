package catalog

import (
	"strings"
	"time"
)

// Status values as spelled by the character API
const (
	StatusAlive   = "Alive"
	StatusDead    = "Dead"
	StatusUnknown = "unknown"
)

// Gender values as spelled by the character API
const (
	GenderFemale     = "Female"
	GenderMale       = "Male"
	GenderGenderless = "Genderless"
	GenderUnknown    = "unknown"
)

// TotalEpisodes is the number of episodes the API knows about. Used to
// scale the episode progress bar in the detail view.
const TotalEpisodes = 51

// Place is a named reference to a location resource
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is one character record as returned by the API.
// Values are read-only snapshots; nothing in this module mutates them.
type Character struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Species  string    `json:"species"`
	Type     string    `json:"type"`
	Gender   string    `json:"gender"`
	Origin   Place     `json:"origin"`
	Location Place     `json:"location"`
	Image    string    `json:"image"`
	Episode  []string  `json:"episode"`
	URL      string    `json:"url"`
	Created  time.Time `json:"created"`
}

// EpisodeCount returns the number of episodes the character appears in
func (c *Character) EpisodeCount() int {
	return len(c.Episode)
}

// FirstEpisode returns the identifier of the first episode reference,
// or "" when the character has none.
func (c *Character) FirstEpisode() string {
	if len(c.Episode) == 0 {
		return ""
	}
	return EpisodeID(c.Episode[0])
}

// LastEpisode returns the identifier of the last episode reference,
// or "" when the character has none.
func (c *Character) LastEpisode() string {
	if len(c.Episode) == 0 {
		return ""
	}
	return EpisodeID(c.Episode[len(c.Episode)-1])
}

// EpisodeID extracts the trailing path segment of an episode URL,
// e.g. "https://rickandmortyapi.com/api/episode/28" -> "28".
func EpisodeID(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

// IsAlive reports whether the status is "Alive", case-insensitively
func (c *Character) IsAlive() bool {
	return strings.EqualFold(c.Status, StatusAlive)
}

// IsDead reports whether the status is "Dead", case-insensitively
func (c *Character) IsDead() bool {
	return strings.EqualFold(c.Status, StatusDead)
}
