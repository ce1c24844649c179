package catalog

// Recognized navigation keys
const (
	KeyName    = "name"
	KeyStatus  = "status"
	KeySpecies = "species"
	KeyType    = "type"
	KeyGender  = "gender"
	KeyPage    = "page"
)

// FilterKeys lists the filter keys in sidebar order. Page is not a filter.
var FilterKeys = []string{KeyName, KeyStatus, KeySpecies, KeyType, KeyGender}

// FilterSet describes which subset and page of characters to display.
// An empty field is unconstrained. Page is always >= 1 once normalized.
type FilterSet struct {
	Name    string
	Status  string
	Species string
	Type    string
	Gender  string
	Page    int
}

// DefaultFilterSet returns the unconstrained first page
func DefaultFilterSet() FilterSet {
	return FilterSet{Page: 1}
}

// Normalized returns a copy with Page coerced to a positive value
func (f FilterSet) Normalized() FilterSet {
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// Get returns the value of a filter key. Unknown keys return "".
func (f FilterSet) Get(key string) string {
	switch key {
	case KeyName:
		return f.Name
	case KeyStatus:
		return f.Status
	case KeySpecies:
		return f.Species
	case KeyType:
		return f.Type
	case KeyGender:
		return f.Gender
	}
	return ""
}

// With returns a copy with key set to value. Changing any filter
// invalidates the current page position, so Page is reset to 1.
// Unknown keys leave the filters untouched but still reset the page.
func (f FilterSet) With(key, value string) FilterSet {
	switch key {
	case KeyName:
		f.Name = value
	case KeyStatus:
		f.Status = value
	case KeySpecies:
		f.Species = value
	case KeyType:
		f.Type = value
	case KeyGender:
		f.Gender = value
	}
	f.Page = 1
	return f
}

// WithPage returns a copy pointing at page n
func (f FilterSet) WithPage(n int) FilterSet {
	f.Page = n
	return f.Normalized()
}

// Cleared returns the unconstrained first page
func (f FilterSet) Cleared() FilterSet {
	return DefaultFilterSet()
}

// HasActiveFilters reports whether any filter other than page is set
func (f FilterSet) HasActiveFilters() bool {
	for _, key := range FilterKeys {
		if f.Get(key) != "" {
			return true
		}
	}
	return false
}
