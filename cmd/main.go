package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/adapters/http/api"
	"github.com/batisback/loyverse-daily-sync/internal/adapters/repository"
	"github.com/batisback/loyverse-daily-sync/internal/adapters/source"
	"github.com/batisback/loyverse-daily-sync/internal/adapters/staging"
	service "github.com/batisback/loyverse-daily-sync/internal/app"
	"github.com/batisback/loyverse-daily-sync/internal/config"
	"github.com/batisback/loyverse-daily-sync/internal/platform/db"
	"github.com/batisback/loyverse-daily-sync/pkg/logger"
)

const opsShutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("sync failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run executes one sync invocation; the scheduler retries a failed run in
// full on the next trigger.
func run() error {
	if err := logger.Init(); err != nil {
		return err
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	conn, err := db.Open(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithLocation(loc),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithWindowDays(cfg.WindowDays),
	}
	if cfg.SourceBaseURL != "" {
		opts = append(opts, service.WithExtractor(source.NewClient(
			cfg.SourceBaseURL,
			source.WithCredentials(cfg.SourceKeyID, cfg.SourceKeySecret),
			source.WithToken(cfg.SourceToken),
			source.WithEntriesPath(cfg.SourceEntriesPath),
			source.WithPageSize(cfg.SourcePageSize),
		)))
	}

	svc := service.New(
		staging.NewStore(conn, cfg.StagingTable),
		repository.NewStore(conn, cfg.CanonicalTable, repository.WithChunkSize(cfg.MergeChunkSize)),
		opts...,
	)

	if cfg.MetricsAddr != "" {
		ops := api.NewServer(cfg.MetricsAddr)
		ops.Start(ctx)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), opsShutdownTimeout)
			defer cancel()
			_ = ops.Stop(shutdownCtx)
		}()
	}

	return svc.Run(ctx)
}
