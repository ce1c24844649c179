package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/metrics"
	"github.com/foxzi/multiverse/internal/query"
	"github.com/foxzi/multiverse/internal/rickmorty"
)

// ErrNotOnPage is returned by Select for a character that is not rendered
var ErrNotOnPage = errors.New("character is not on the current page")

// Fetcher loads one page of characters
type Fetcher interface {
	FetchPage(ctx context.Context, f catalog.FilterSet) (catalog.PageResult, error)
}

// Controller owns what the list view currently displays. It mirrors the
// FilterSet held by a query.Store and re-fetches on every change.
// Only the response to the most recent fetch is applied.
type Controller struct {
	fetcher     Fetcher
	store       *query.Store
	logger      *slog.Logger
	unsubscribe func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	filters   catalog.FilterSet
	page      catalog.PageResult
	loading   bool
	errMsg    string
	selection Selection
	seq       uint64
	settled   chan struct{}
	pending   bool
	closed    bool
}

// New creates a controller bound to store and starts the first fetch
func New(fetcher Fetcher, store *query.Store, logger *slog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	settled := make(chan struct{})
	close(settled)

	c := &Controller{
		fetcher: fetcher,
		store:   store,
		logger:  logger.With("component", "viewer"),
		ctx:     ctx,
		cancel:  cancel,
		page:    catalog.EmptyPage(1),
		settled: settled,
	}

	c.unsubscribe = store.Subscribe(c.load)
	c.load(store.Filters())

	return c
}

// Store returns the navigation store the controller follows
func (c *Controller) Store() *query.Store {
	return c.store
}

// Navigate moves the store to f. A fetch starts only if f differs from
// the current FilterSet.
func (c *Controller) Navigate(f catalog.FilterSet) bool {
	return c.store.Set(f)
}

// NavigateQuery moves the store to the FilterSet encoded in raw
func (c *Controller) NavigateQuery(raw string) bool {
	return c.store.Replace(raw)
}

// Retry re-issues the fetch for the unchanged FilterSet
func (c *Controller) Retry() {
	c.load(c.store.Filters())
}

// Select opens the detail view for a character on the current page
func (c *Controller) Select(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	character, ok := c.page.Find(id)
	if !ok {
		return fmt.Errorf("select %d: %w", id, ErrNotOnPage)
	}

	c.selection = Selection{Character: &character, Visible: true}
	return nil
}

// CloseDetail dismisses the detail view
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = Selection{}
}

// Snapshot returns a copy of the current display state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	page := c.page
	page.Characters = append([]catalog.Character(nil), c.page.Characters...)

	selection := c.selection
	if selection.Character != nil {
		character := *selection.Character
		selection.Character = &character
	}

	return Snapshot{
		Filters:   c.filters,
		Page:      page,
		Loading:   c.loading,
		Error:     c.errMsg,
		Selection: selection,
		State:     deriveState(c.loading, c.errMsg, c.page),
	}
}

// Wait blocks until the most recent fetch has been applied
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		done := c.settled
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}

		c.mu.Lock()
		current := c.settled == done
		c.mu.Unlock()
		if current {
			return nil
		}
	}
}

// Close stops following the store and abandons in-flight fetches
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.unsubscribe()
	c.cancel()
	c.wg.Wait()
}

// load starts a fetch for f. The sequence number captured here decides
// whether the response is still wanted when it arrives.
func (c *Controller) load(f catalog.FilterSet) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	// A Retry racing a store write may carry filters the store has
	// already moved past; the write's own notification loads the rest.
	if query.Encode(f) != c.store.String() {
		c.mu.Unlock()
		return
	}

	if f != c.filters {
		c.selection = Selection{}
	}

	c.seq++
	seq := c.seq
	c.filters = f
	c.loading = true
	c.errMsg = ""

	// Wake waiters on the superseded fetch so they move on to this one
	if c.pending {
		close(c.settled)
	}
	c.settled = make(chan struct{})
	c.pending = true

	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		page, err := c.fetcher.FetchPage(c.ctx, f)
		c.apply(seq, f, page, err)
	}()
}

func (c *Controller) apply(seq uint64, f catalog.FilterSet, page catalog.PageResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debug("discarding stale response",
			"filters", query.Encode(f),
			"seq", seq,
			"latest", c.seq,
		)
		metrics.IncStaleResponses()
		return
	}

	c.loading = false

	if err != nil {
		c.errMsg = rickmorty.UserMessage(err)
		// Pagination metadata stays as it was; only the rows go
		c.page.Characters = []catalog.Character{}
		c.selection = Selection{}
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("failed to fetch characters",
				"filters", query.Encode(f),
				"error", err,
			)
		}
	} else {
		c.page = page
		if sel := c.selection.Character; sel != nil {
			if _, ok := page.Find(sel.ID); !ok {
				c.selection = Selection{}
			}
		}
	}

	close(c.settled)
	c.pending = false
}
