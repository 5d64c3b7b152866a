package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	coreapp "cxxbind/internal/core/app"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthStatus struct {
	Status      string    `json:"status"`
	LastRun     time.Time `json:"last_run,omitempty"`
	Error       string    `json:"error,omitempty"`
	Diagnostics int       `json:"diagnostics"`
}

func healthOf(update coreapp.Update) healthStatus {
	status := healthStatus{Status: "up", LastRun: update.At}
	if update.Err != nil {
		status.Status = "degraded"
		status.Error = update.Err.Error()
	}
	if update.Result != nil {
		status.Diagnostics = len(update.Result.Diagnostics)
	}
	return status
}

type ObservabilityServer struct {
	addr   string
	app    *coreapp.App
	server *http.Server
}

func NewObservabilityServer(addr string, app *coreapp.App) *ObservabilityServer {
	return &ObservabilityServer{
		addr: addr,
		app:  app,
	}
}

func (s *ObservabilityServer) handler() http.Handler {
	mux := http.NewServeMux()

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Health reflects the most recent run.
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := healthOf(s.app.LastUpdate())
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	})
	return mux
}

func (s *ObservabilityServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.server = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("observability server starting", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *ObservabilityServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
