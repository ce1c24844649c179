package viewer

import "github.com/foxzi/multiverse/internal/catalog"

// DisplayState is the rendering mode of the list. States are mutually
// exclusive at render time.
type DisplayState int

const (
	Loading DisplayState = iota
	Populated
	Empty
	Failed
)

func (s DisplayState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Selection is the character shown in the detail overlay, if any
type Selection struct {
	Character *catalog.Character
	Visible   bool
}

// Snapshot is a copy of everything the list view renders
type Snapshot struct {
	Filters   catalog.FilterSet
	Page      catalog.PageResult
	Loading   bool
	Error     string
	Selection Selection
	State     DisplayState
}

// deriveState maps the raw controller fields onto a display state
func deriveState(loading bool, errMsg string, page catalog.PageResult) DisplayState {
	switch {
	case errMsg != "":
		return Failed
	case page.IsEmpty() && loading:
		return Loading
	case page.IsEmpty():
		return Empty
	default:
		return Populated
	}
}
