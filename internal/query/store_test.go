package query

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/foxzi/multiverse/internal/catalog"
)

func TestStoreSetFilterResetsPage(t *testing.T) {
	s := NewStore(catalog.FilterSet{Status: "alive", Page: 5})

	for _, key := range catalog.FilterKeys {
		s.SetPage(5)
		s.SetFilter(key, "x")
		if got := s.Filters().Page; got != 1 {
			t.Errorf("SetFilter(%q) left page = %d, want 1", key, got)
		}
	}
}

func TestStoreSetFilterEmptyRemovesKey(t *testing.T) {
	s := NewStore(catalog.FilterSet{Name: "rick", Status: "alive", Page: 3})

	s.SetFilter(catalog.KeyName, "")
	if got := s.String(); got != "page=1&status=alive" {
		t.Errorf("String() = %q, want %q", got, "page=1&status=alive")
	}
}

func TestStoreSetPageKeepsFilters(t *testing.T) {
	s := NewStore(catalog.FilterSet{Gender: "female", Page: 1})

	s.SetPage(3)
	want := catalog.FilterSet{Gender: "female", Page: 3}
	if got := s.Filters(); got != want {
		t.Errorf("Filters() = %+v, want %+v", got, want)
	}

	s.SetFilter(catalog.KeyPage, "4")
	if got := s.Filters().Page; got != 4 {
		t.Errorf("SetFilter(page) Page = %d, want 4", got)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(catalog.FilterSet{Name: "rick", Species: "human", Type: "clone", Page: 9})

	s.Clear()
	if got := s.String(); got != "page=1" {
		t.Errorf("String() after Clear = %q, want %q", got, "page=1")
	}
}

func TestStoreNotifiesOnChangeOnly(t *testing.T) {
	s := NewStore(catalog.DefaultFilterSet())

	var seen []catalog.FilterSet
	unsubscribe := s.Subscribe(func(f catalog.FilterSet) {
		seen = append(seen, f)
	})

	if s.SetPage(1) {
		t.Error("SetPage(1) reported a change on page 1")
	}
	if !s.SetFilter(catalog.KeyStatus, "dead") {
		t.Error("SetFilter() reported no change")
	}
	if s.Replace("status=dead&page=1&lang=en") {
		t.Error("Replace() with an equivalent query reported a change")
	}
	if !s.Replace("?status=dead&page=2") {
		t.Error("Replace() with a new page reported no change")
	}

	if len(seen) != 2 {
		t.Fatalf("listener called %d times, want 2", len(seen))
	}
	if seen[1] != (catalog.FilterSet{Status: "dead", Page: 2}) {
		t.Errorf("last notification = %+v", seen[1])
	}

	unsubscribe()
	s.Clear()
	if len(seen) != 2 {
		t.Errorf("listener called after unsubscribe")
	}
}

func TestStoreListenerSeesCommittedState(t *testing.T) {
	s := NewStore(catalog.DefaultFilterSet())

	var inside string
	s.Subscribe(func(catalog.FilterSet) {
		inside = s.String()
	})

	s.SetFilter(catalog.KeyName, "summer")
	if inside != "name=summer&page=1" {
		t.Errorf("listener saw %q, want %q", inside, "name=summer&page=1")
	}
}

func TestStoreDeliversInCommitOrder(t *testing.T) {
	s := NewStore(catalog.DefaultFilterSet())

	entered := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var seen []string
	s.Subscribe(func(f catalog.FilterSet) {
		if f.Status == "alive" {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, f.Status)
		mu.Unlock()
	})

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		s.SetFilter(catalog.KeyStatus, "alive")
	}()
	<-entered

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		s.SetFilter(catalog.KeyStatus, "dead")
	}()

	select {
	case <-secondDone:
		t.Fatal("second write finished while the first was still notifying")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-firstDone
	<-secondDone

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "alive" || seen[1] != "dead" {
		t.Errorf("notifications = %v, want [alive dead]", seen)
	}
	if got := s.Filters().Status; got != "dead" {
		t.Errorf("Filters().Status = %q, want dead", got)
	}
}

func TestStoreConcurrentWritesLastNotificationMatches(t *testing.T) {
	s := NewStore(catalog.DefaultFilterSet())

	var mu sync.Mutex
	var last catalog.FilterSet
	s.Subscribe(func(f catalog.FilterSet) {
		mu.Lock()
		last = f
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetFilter(catalog.KeyName, fmt.Sprintf("n%d", i))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if last != s.Filters() {
		t.Errorf("last notification %+v, store holds %+v", last, s.Filters())
	}
}
