package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cleaner periodically removes expired entries from a BoltStorage
type Cleaner struct {
	storage  *BoltStorage
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
	done     chan struct{}
	once     sync.Once
}

// NewCleaner creates a cleaner running every interval
func NewCleaner(storage *BoltStorage, interval time.Duration, logger *slog.Logger) *Cleaner {
	return &Cleaner{
		storage:  storage,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the cleanup loop. A non-positive interval disables it.
func (c *Cleaner) Start(ctx context.Context) {
	if c.interval <= 0 {
		return
	}

	c.wg.Add(1)
	go c.loop(ctx)

	c.logger.Info("cache cleaner started", "interval", c.interval)
}

// Stop stops the cleaner and waits for the loop to exit
func (c *Cleaner) Stop() {
	c.once.Do(func() { close(c.done) })
	c.wg.Wait()
}

func (c *Cleaner) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

func (c *Cleaner) run(ctx context.Context) {
	deleted, err := c.storage.CleanupExpired(ctx)
	if err != nil {
		c.logger.Error("failed to cleanup cache", "error", err)
		return
	}

	if deleted > 0 {
		c.logger.Info("cleaned up expired cache entries", "deleted", deleted)
	}
}
