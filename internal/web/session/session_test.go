package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/metrics"
	"github.com/foxzi/multiverse/internal/query"
	"github.com/foxzi/multiverse/internal/viewer"
)

type stubFetcher struct {
	calls atomic.Int32
}

func (s *stubFetcher) FetchPage(ctx context.Context, f catalog.FilterSet) (catalog.PageResult, error) {
	s.calls.Add(1)
	return catalog.EmptyPage(f.Page), nil
}

func newManager(t *testing.T, opts Options) (*Manager, *atomic.Int32) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := &stubFetcher{}
	var created atomic.Int32

	m := NewManager(opts, func(initial catalog.FilterSet) *viewer.Controller {
		created.Add(1)
		return viewer.New(fetcher, query.NewStore(initial), logger)
	}, logger)
	t.Cleanup(m.Close)

	return m, &created
}

func TestManagerCreatesAndReusesSession(t *testing.T) {
	m, created := newManager(t, Options{CookieName: "sid", TTL: time.Hour, MaxSessions: 10})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	first := m.Get(rec, req, catalog.FilterSet{Status: "dead", Page: 1})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || cookies[0].Value == "" {
		t.Fatalf("cookies = %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if got := first.Store().Filters().Status; got != "dead" {
		t.Errorf("initial Status = %q, want dead", got)
	}

	req2 := httptest.NewRequest("GET", "/", nil)
	req2.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	second := m.Get(rec2, req2, catalog.DefaultFilterSet())

	if second != first {
		t.Error("Get() with a session cookie returned a different controller")
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Error("existing session set a new cookie")
	}
	if created.Load() != 1 {
		t.Errorf("controllers created = %d, want 1", created.Load())
	}

	if c, ok := m.Lookup(req2); !ok || c != first {
		t.Error("Lookup() did not find the session")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestManagerUnknownCookie(t *testing.T) {
	m, created := newManager(t, Options{TTL: time.Hour})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "multiverse_session", Value: "stale"})

	if _, ok := m.Lookup(req); ok {
		t.Error("Lookup() found an unknown session")
	}

	rec := httptest.NewRecorder()
	m.Get(rec, req, catalog.DefaultFilterSet())
	if created.Load() != 1 {
		t.Errorf("controllers created = %d, want 1", created.Load())
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("no replacement cookie set")
	}
}

func TestManagerEvictsOldest(t *testing.T) {
	m, _ := newManager(t, Options{TTL: time.Hour, MaxSessions: 2})

	var first *http.Cookie
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		m.Get(rec, httptest.NewRequest("GET", "/", nil), catalog.DefaultFilterSet())
		if i == 0 {
			first = rec.Result().Cookies()[0]
		}
	}

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(first)
	if _, ok := m.Lookup(req); ok {
		t.Error("oldest session was not evicted")
	}
}

func TestManagerClose(t *testing.T) {
	m, _ := newManager(t, Options{TTL: time.Hour})

	rec := httptest.NewRecorder()
	c := m.Get(rec, httptest.NewRequest("GET", "/", nil), catalog.DefaultFilterSet())

	m.Close()
	if m.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", m.Len())
	}

	// A closed controller ignores further navigation
	c.Navigate(catalog.FilterSet{Page: 4})
	if got := c.Snapshot().Filters.Page; got != 1 {
		t.Errorf("closed controller followed navigation to page %d", got)
	}
}

func waitGauge(t *testing.T, m *metrics.Metrics, want float64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got := testutil.ToFloat64(m.SessionsActive)
		if got == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("sessions_active = %v, want %v", got, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManagerGaugeFollowsEvictions(t *testing.T) {
	m := metrics.New()
	metrics.SetGlobal(m)
	t.Cleanup(func() { metrics.SetGlobal(nil) })

	mgr, _ := newManager(t, Options{TTL: 300 * time.Millisecond, MaxSessions: 2})

	for i := 0; i < 3; i++ {
		mgr.Get(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), catalog.DefaultFilterSet())
	}
	waitGauge(t, m, 2)

	// Expiry removes the rest without any further call into the manager
	waitGauge(t, m, 0)
}
