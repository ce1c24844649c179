package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// CountFunc reports the current size of something worth a gauge
type CountFunc func() (int, error)

// Collector periodically samples system and cache gauges
type Collector struct {
	metrics      *Metrics
	cacheEntries CountFunc
	interval     time.Duration
	startTime    time.Time

	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewCollector creates a new gauge collector. cacheEntries may be nil
// when no persistent cache is configured.
func NewCollector(m *Metrics, cacheEntries CountFunc, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &Collector{
		metrics:      m,
		cacheEntries: cacheEntries,
		interval:     interval,
		startTime:    time.Now(),
		stopCh:       make(chan struct{}),
	}
}

// Start begins sampling in the background
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.loop(ctx)
}

// Stop stops the collector
func (c *Collector) Stop() {
	c.once.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func (c *Collector) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// collect samples current system state
func (c *Collector) collect() {
	c.metrics.UptimeSeconds.Set(time.Since(c.startTime).Seconds())
	c.metrics.Goroutines.Set(float64(runtime.NumGoroutine()))

	if c.cacheEntries != nil {
		if n, err := c.cacheEntries(); err == nil {
			c.metrics.CacheEntries.Set(float64(n))
		}
	}
}
