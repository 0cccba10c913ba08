// Package service wires the sync pipeline: staged events fan out across
// normalization workers and the collected batch is merged into the
// canonical table as one atomic unit.
package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	eventqueue "github.com/batisback/loyverse-daily-sync/internal/adapters/mq/queue"
	workerpool "github.com/batisback/loyverse-daily-sync/internal/adapters/mq/worker"
	"github.com/batisback/loyverse-daily-sync/internal/adapters/repository"
	"github.com/batisback/loyverse-daily-sync/internal/domain/batch"
	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	"github.com/batisback/loyverse-daily-sync/internal/domain/normalize"
	"github.com/batisback/loyverse-daily-sync/pkg/logger"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"

	"github.com/google/uuid"
)

// Stager reads staged events and lands extracted payloads.
type Stager interface {
	Events(ctx context.Context) ([]model.RawEvent, error)
	Append(ctx context.Context, runID string, payloads []map[string]string, loadTS time.Time) error
}

// Merger reconciles the batch into the canonical table.
type Merger interface {
	Merge(ctx context.Context, records []model.Record) (repository.Result, error)
}

// Extractor pulls provider entries for a time window.
type Extractor interface {
	Entries(ctx context.Context, from, to time.Time) ([]map[string]string, error)
}

// Service performs one sync invocation. Concurrent runs against the same
// canonical table are serialized by the external scheduler, not here.
type Service struct {
	stager    Stager
	merger    Merger
	extractor Extractor // nil disables the extraction pre-step
	engine    normalize.Engine

	workerCount int
	queueSize   int
	windowDays  int
	loc         *time.Location
	now         func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of normalization workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the minimum capacity of the raw event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLocation sets the reference timezone for normalization and the
// extraction window.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithExtractor enables the extraction pre-step.
func WithExtractor(e Extractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

// WithWindowDays sets how many days back the extraction window starts.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service over the given staging and canonical stores.
func New(stager Stager, merger Merger, opts ...Option) *Service {
	s := &Service{
		stager:      stager,
		merger:      merger,
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		windowDays:  1,
		loc:         time.UTC,
		now:         time.Now,
		logger:      logger.Get().Named("sync"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.engine = normalize.New(normalize.WithLocation(s.loc))

	return s
}

// Run executes one sync pass: optional extraction, parallel normalization
// of every staged event, then a single atomic merge. The returned error is
// the run's exit status; a failed merge leaves the canonical table as it
// was.
func (s *Service) Run(ctx context.Context) error {
	runID := uuid.New().String()
	log := s.logger.Named("run")
	log.Info(ctx, "sync run starting", logger.String("run_id", runID))

	if s.extractor != nil {
		if err := s.extract(ctx, runID); err != nil {
			metrics.RecordRun("failure")
			return err
		}
	}

	events, err := s.stager.Events(ctx)
	if err != nil {
		metrics.RecordRun("failure")
		return fmt.Errorf("read staged events: %w", err)
	}

	records, err := s.normalizeAll(ctx, events)
	if err != nil {
		metrics.RecordRun("failure")
		return err
	}

	res, err := s.merger.Merge(ctx, records)
	if err != nil {
		metrics.RecordRun("failure")
		return fmt.Errorf("merge batch: %w", err)
	}

	metrics.RecordRun("success")
	log.Info(ctx, "sync run complete",
		logger.String("run_id", runID),
		logger.Int("staged", len(events)),
		logger.Int("records", res.Records),
		logger.Int64("rows_affected", res.RowsAffected),
	)
	return nil
}

// extract pulls the provider window and lands it in staging.
func (s *Service) extract(ctx context.Context, runID string) error {
	now := s.now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, -s.windowDays)

	payloads, err := s.extractor.Entries(ctx, from, now)
	if err != nil {
		return fmt.Errorf("extract provider entries: %w", err)
	}
	if len(payloads) == 0 {
		s.logger.Info(ctx, "no provider entries for window", logger.String("run_id", runID))
		return nil
	}
	if err := s.stager.Append(ctx, runID, payloads, s.now()); err != nil {
		return fmt.Errorf("land extracted payloads: %w", err)
	}
	s.logger.Info(ctx, "landed provider entries",
		logger.String("run_id", runID),
		logger.Int("payloads", len(payloads)),
	)
	return nil
}

// normalizeAll fans the events out across the worker pool and returns the
// deduplicated batch. The queue is sized to hold the full event set, so a
// rejected enqueue is a programming error, not backpressure.
func (s *Service) normalizeAll(ctx context.Context, events []model.RawEvent) ([]model.Record, error) {
	capacity := s.queueSize
	if len(events) > capacity {
		capacity = len(events)
	}

	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(capacity))
	collector := batch.NewInMemoryCollector(batch.WithCapacityHint(len(events)))

	pool := workerpool.NewPool(s.workerCount, q, s.engine, collector)
	pool.Start(ctx)

	for _, e := range events {
		if !q.Enqueue(ctx, e) {
			_ = q.Close()
			pool.Wait()
			return nil, fmt.Errorf("staged event rejected by queue (capacity %d)", capacity)
		}
	}
	if err := q.Close(); err != nil {
		return nil, err
	}
	pool.Wait()

	records := collector.Records(ctx)
	s.logger.Debug(ctx, "batch collected",
		logger.Int("records", len(records)),
		logger.Int64("duplicates", collector.Duplicates()),
	)
	return records, nil
}
