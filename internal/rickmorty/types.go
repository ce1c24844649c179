package rickmorty

import "github.com/foxzi/multiverse/internal/catalog"

// Info is the pagination block of a list response
type Info struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// ListResponse is the envelope returned by GET /character/
type ListResponse struct {
	Info    Info                `json:"info"`
	Results []catalog.Character `json:"results"`
}

// ErrorResponse is the body the API sends with error statuses
type ErrorResponse struct {
	Error string `json:"error"`
}

// PageResult converts the envelope into a page for the requested page number
func (r *ListResponse) PageResult(page int) catalog.PageResult {
	characters := r.Results
	if characters == nil {
		characters = []catalog.Character{}
	}

	total := r.Info.Pages
	if total < 1 {
		total = 1
	}

	return catalog.PageResult{
		Characters:  characters,
		Count:       r.Info.Count,
		CurrentPage: page,
		TotalPages:  total,
		HasNext:     r.Info.Next != nil,
		HasPrev:     r.Info.Prev != nil,
	}
}
