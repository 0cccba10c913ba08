// Package worker runs the normalization engine in parallel over staged
// events. The engine is stateless per record, so workers consume the queue
// with no ordering constraints.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	"github.com/batisback/loyverse-daily-sync/pkg/logger"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
)

// Event abstracts what workers read off the queue.
type Event = model.RawEvent

// Engine normalizes one raw event into zero or one record.
type Engine interface {
	Normalize(ctx context.Context, e Event) (model.Record, bool)
}

// Collector receives normalized records.
type Collector interface {
	Add(ctx context.Context, rec model.Record)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker drains events from the queue through the engine into the collector.
type Worker struct {
	queue     Queue
	engine    Engine
	collector Collector
	name      string

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, engine Engine, collector Collector, opts ...Option) *Worker {
	w := &Worker{
		queue:     queue,
		engine:    engine,
		collector: collector,
		name:      "worker",
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run processes events until the queue channel closes or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, event)
		}
	}
}

// process normalizes a single event.
func (w *Worker) process(ctx context.Context, event Event) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, ok := w.engine.Normalize(ctx, event)
	if !ok {
		// Null payload: filtered, not an error.
		w.logger.Debug(ctx, "skipping event without payload")
		return
	}
	w.collector.Add(ctx, rec)
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, queue Queue, engine Engine, collector Collector) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(
			queue,
			engine,
			collector,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has drained the queue and returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}
