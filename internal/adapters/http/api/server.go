// Package api serves the operational endpoints exposed while a sync run is
// in flight: liveness and Prometheus metrics. There is no interactive
// surface; the run itself is triggered by the external scheduler invoking
// the binary.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/batisback/loyverse-daily-sync/pkg/logger"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP server timeout constants.
const (
	readTimeout       = 5 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Server is the ops listener.
type Server struct {
	srv    *http.Server
	logger logger.Logger
}

// NewServer creates an ops listener on addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", HandleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger.Get().Named("ops"),
	}
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info(ctx, "ops listener started", logger.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(ctx, "ops listener failed", logger.Error(err))
		}
	}()
}

// Stop shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// HandleHealth handles GET /healthz requests.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
