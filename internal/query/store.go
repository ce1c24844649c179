package query

import (
	"slices"
	"sync"

	"github.com/foxzi/multiverse/internal/catalog"
)

// Listener is notified with the new FilterSet after every change
type Listener func(catalog.FilterSet)

// Store holds the navigation query string. It is the single source of
// truth for the FilterSet: every write is encoded through the codec,
// and listeners only ever see decoded copies.
type Store struct {
	// notifyMu is held from commit through delivery so listeners see
	// changes in commit order. Listeners must not write to the store.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	current   string
	nextID    int
	listeners map[int]Listener
}

// NewStore creates a store positioned at f
func NewStore(f catalog.FilterSet) *Store {
	return &Store{
		current:   Encode(f),
		listeners: make(map[int]Listener),
	}
}

// String returns the canonical query string
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Filters returns the decoded FilterSet
func (s *Store) Filters() catalog.FilterSet {
	return Decode(s.String())
}

// Subscribe registers fn for change notifications and returns a
// function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SetFilter sets one filter and resets the page to 1. The "page" key
// is routed to SetPage so it does not reset itself.
func (s *Store) SetFilter(key, value string) bool {
	if key == catalog.KeyPage {
		return s.SetPage(parsePage(value))
	}
	return s.write(func(f catalog.FilterSet) catalog.FilterSet {
		return f.With(key, value)
	})
}

// SetPage moves to page n, keeping the filters
func (s *Store) SetPage(n int) bool {
	return s.write(func(f catalog.FilterSet) catalog.FilterSet {
		return f.WithPage(n)
	})
}

// Clear drops every filter, leaving "page=1"
func (s *Store) Clear() bool {
	return s.write(func(f catalog.FilterSet) catalog.FilterSet {
		return f.Cleared()
	})
}

// Replace adopts a raw query string coming from the address bar
func (s *Store) Replace(raw string) bool {
	next := Decode(raw)
	return s.write(func(catalog.FilterSet) catalog.FilterSet {
		return next
	})
}

// Set adopts f wholesale
func (s *Store) Set(f catalog.FilterSet) bool {
	return s.write(func(catalog.FilterSet) catalog.FilterSet {
		return f
	})
}

// write applies fn to the current FilterSet and notifies listeners when
// the encoded string changed. Listeners run outside mu but inside
// notifyMu, so a later write waits for earlier notifications.
func (s *Store) write(fn func(catalog.FilterSet) catalog.FilterSet) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next := Encode(fn(Decode(s.current)))
	if next == s.current {
		s.mu.Unlock()
		return false
	}
	s.current = next

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	f := Decode(next)
	for _, fn := range listeners {
		fn(f)
	}
	return true
}
