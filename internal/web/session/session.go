// Package session keeps one list controller per browser, keyed by a
// cookie. Idle sessions expire and their controllers are closed.
package session

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/metrics"
	"github.com/foxzi/multiverse/internal/viewer"
)

// Factory creates a controller positioned at the given filters
type Factory func(initial catalog.FilterSet) *viewer.Controller

// Options configures a Manager
type Options struct {
	CookieName  string
	TTL         time.Duration
	MaxSessions int
	Secure      bool
}

// Manager maps session cookies to controllers
type Manager struct {
	opts     Options
	factory  Factory
	logger   *slog.Logger
	mu       sync.Mutex
	sessions *expirable.LRU[string, *viewer.Controller]
}

// NewManager creates a session manager
func NewManager(opts Options, factory Factory, logger *slog.Logger) *Manager {
	if opts.MaxSessions < 1 {
		opts.MaxSessions = 1000
	}
	if opts.CookieName == "" {
		opts.CookieName = "multiverse_session"
	}

	m := &Manager{
		opts:    opts,
		factory: factory,
		logger:  logger.With("component", "session"),
	}

	m.sessions = expirable.NewLRU[string, *viewer.Controller](opts.MaxSessions, m.onEvict, opts.TTL)
	return m
}

// onEvict runs under the LRU lock, so the controller is closed and
// the gauge refreshed asynchronously. Len blocks until the eviction
// has finished.
func (m *Manager) onEvict(id string, c *viewer.Controller) {
	m.logger.Debug("session evicted", "session_id", id)
	go func() {
		c.Close()
		metrics.SetSessionsActive(m.sessions.Len())
	}()
}

// Get returns the controller for the request's session, creating a
// session (and setting its cookie) when there is none. A new controller
// starts at initial.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request, initial catalog.FilterSet) *viewer.Controller {
	if cookie, err := r.Cookie(m.opts.CookieName); err == nil {
		if c, ok := m.sessions.Get(cookie.Value); ok {
			return c
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	c := m.factory(initial)
	m.sessions.Add(id, c)
	metrics.SetSessionsActive(m.sessions.Len())

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Debug("session created", "session_id", id)
	return c
}

// Lookup returns the controller for the request's session without
// creating one
func (m *Manager) Lookup(r *http.Request) (*viewer.Controller, bool) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return nil, false
	}
	return m.sessions.Get(cookie.Value)
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	n := m.sessions.Len()
	metrics.SetSessionsActive(n)
	return n
}

// Close closes every controller and drops all sessions
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.sessions.Values() {
		c.Close()
	}
	m.sessions.Purge()
	metrics.SetSessionsActive(0)
}
