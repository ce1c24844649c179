package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores raw API response bodies keyed by request URL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Memory is an in-process LRU cache with a per-entry TTL
type Memory struct {
	lru *expirable.LRU[string, memEntry]
	now func() time.Time
}

// memEntry may carry its own deadline, shorter than the LRU TTL
type memEntry struct {
	value   []byte
	expires time.Time
}

// NewMemory creates a memory cache holding at most size entries for ttl
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 256
	}
	return &Memory{
		lru: expirable.NewLRU[string, memEntry](size, nil, ttl),
		now: time.Now,
	}
}

// Get returns the cached value for key
func (m *Memory) Get(key string) ([]byte, bool) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key
func (m *Memory) Set(key string, value []byte) error {
	m.lru.Add(key, memEntry{value: value})
	return nil
}

// SetUntil stores value under key until expires or the LRU TTL,
// whichever comes first
func (m *Memory) SetUntil(key string, value []byte, expires time.Time) error {
	m.lru.Add(key, memEntry{value: value, expires: expires})
	return nil
}

// Len returns the number of live entries
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Purge drops every entry
func (m *Memory) Purge() {
	m.lru.Purge()
}

// Tiered checks a fast cache first and falls back to a slower one,
// promoting hits from the slow tier. A promoted entry never outlives
// its slow-tier deadline when both tiers track deadlines.
type Tiered struct {
	fast Cache
	slow Cache
}

type expiryGetter interface {
	GetWithExpiry(key string) ([]byte, time.Time, bool)
}

type untilSetter interface {
	SetUntil(key string, value []byte, expires time.Time) error
}

// NewTiered chains fast in front of slow
func NewTiered(fast, slow Cache) *Tiered {
	return &Tiered{fast: fast, slow: slow}
}

// Get returns the value from the first tier that has it
func (t *Tiered) Get(key string) ([]byte, bool) {
	if v, ok := t.fast.Get(key); ok {
		return v, true
	}

	eg, hasExpiry := t.slow.(expiryGetter)
	us, canLimit := t.fast.(untilSetter)
	if hasExpiry && canLimit {
		v, expires, ok := eg.GetWithExpiry(key)
		if !ok {
			return nil, false
		}
		if expires.IsZero() {
			_ = t.fast.Set(key, v)
		} else {
			_ = us.SetUntil(key, v, expires)
		}
		return v, true
	}

	v, ok := t.slow.Get(key)
	if !ok {
		return nil, false
	}
	_ = t.fast.Set(key, v)
	return v, true
}

// Set writes to both tiers. The fast tier is written even when the
// slow tier fails.
func (t *Tiered) Set(key string, value []byte) error {
	_ = t.fast.Set(key, value)
	return t.slow.Set(key, value)
}
