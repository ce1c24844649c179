package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketResponses = []byte("responses")

type entry struct {
	StoredAt time.Time `json:"stored_at"`
	Body     []byte    `json:"body"`
}

// BoltStorage persists response bodies in a BoltDB file so they
// survive restarts
type BoltStorage struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// NewBoltStorage opens (or creates) the cache file at path
func NewBoltStorage(path string, ttl time.Duration) (*BoltStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketResponses); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketResponses, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStorage{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns a non-expired body for key
func (s *BoltStorage) Get(key string) ([]byte, bool) {
	body, _, ok := s.GetWithExpiry(key)
	return body, ok
}

// GetWithExpiry returns a non-expired body for key and the time it
// expires. The time is zero when entries never expire.
func (s *BoltStorage) GetWithExpiry(key string) ([]byte, time.Time, bool) {
	var body []byte
	var expires time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketResponses).Get([]byte(key))
		if data == nil {
			return nil
		}

		var e entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil
		}
		if s.expired(e) {
			return nil
		}
		body = e.Body
		if s.ttl > 0 {
			expires = e.StoredAt.Add(s.ttl)
		}
		return nil
	})
	if err != nil || body == nil {
		return nil, time.Time{}, false
	}
	return body, expires, true
}

// Set stores value under key, stamped with the current time
func (s *BoltStorage) Set(key string, value []byte) error {
	data, err := json.Marshal(entry{StoredAt: s.now(), Body: value})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketResponses).Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to store cache entry: %w", err)
		}
		return nil
	})
}

// CleanupExpired deletes entries older than the TTL and returns how
// many were removed
func (s *BoltStorage) CleanupExpired(ctx context.Context) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResponses)

		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e entry
			if err := json.Unmarshal(v, &e); err != nil || s.expired(e) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(stale)
		return nil
	})

	return deleted, err
}

// Purge deletes every entry and returns how many were removed
func (s *BoltStorage) Purge() (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		deleted = tx.Bucket(bucketResponses).Stats().KeyN
		if err := tx.DeleteBucket(bucketResponses); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketResponses)
		return err
	})

	return deleted, err
}

// Count returns the number of stored entries, expired or not
func (s *BoltStorage) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketResponses).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the database
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

func (s *BoltStorage) expired(e entry) bool {
	return s.ttl > 0 && s.now().Sub(e.StoredAt) > s.ttl
}
