package catalog

// PageResult is one fetched page of characters plus pagination metadata.
// It is rebuilt from every API response and never merged with an earlier one.
type PageResult struct {
	Characters  []Character
	Count       int
	CurrentPage int
	TotalPages  int
	HasNext     bool
	HasPrev     bool
}

// EmptyPage is the result for a query with no matches
func EmptyPage(page int) PageResult {
	if page < 1 {
		page = 1
	}
	return PageResult{
		Characters:  []Character{},
		CurrentPage: page,
		TotalPages:  1,
	}
}

// IsEmpty reports whether the page holds no characters
func (p PageResult) IsEmpty() bool {
	return len(p.Characters) == 0
}

// Find returns the character with the given id on this page
func (p PageResult) Find(id int) (Character, bool) {
	for _, c := range p.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}
