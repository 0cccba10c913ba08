// Package batch collects normalized records into the merge batch, collapsing
// repeated identities.
package batch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"
)

// Collector accumulates the records of one sync run. Records sharing an id
// collapse onto a single entry with the most recently added values winning,
// matching the canonical table's last-write-per-run semantics.
type Collector interface {
	// Add records rec, replacing any earlier record with the same id.
	// Thread-safe; workers call it concurrently.
	Add(ctx context.Context, rec model.Record)

	// Records returns the collected batch in first-seen id order.
	Records(ctx context.Context) []model.Record

	// Size returns the number of distinct identities collected.
	Size() int64

	// Duplicates returns how many adds collapsed onto an existing id.
	Duplicates() int64
}

// inMemoryCollector implements Collector with a map from id to slice index,
// keeping first-seen order for deterministic batches.
type inMemoryCollector struct {
	mu         sync.Mutex
	index      map[string]int
	records    []model.Record
	duplicates atomic.Int64
}

// Option applies a configuration option to the in-memory collector.
type Option func(*inMemoryCollector)

// WithCapacityHint pre-sizes the collector for an expected batch size.
func WithCapacityHint(n int) Option {
	return func(c *inMemoryCollector) {
		if n > 0 {
			c.index = make(map[string]int, n)
			c.records = make([]model.Record, 0, n)
		}
	}
}

// NewInMemoryCollector creates a collector with configuration options.
func NewInMemoryCollector(opts ...Option) Collector {
	c := &inMemoryCollector{
		index: make(map[string]int),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *inMemoryCollector) Add(_ context.Context, rec model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[rec.ID]; ok {
		c.records[i] = rec
		c.duplicates.Add(1)
		metrics.RecordDuplicateID()
		return
	}

	c.index[rec.ID] = len(c.records)
	c.records = append(c.records, rec)
}

func (c *inMemoryCollector) Records(_ context.Context) []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Record, len(c.records))
	copy(out, c.records)
	return out
}

func (c *inMemoryCollector) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return int64(len(c.records))
}

func (c *inMemoryCollector) Duplicates() int64 {
	return c.duplicates.Load()
}
