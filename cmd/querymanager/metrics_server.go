package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tibia/querymanager/internal/metrics"
)

const metricsShutdownTimeout = 5 * time.Second

// newMetricsServer builds a loopback-only HTTP server exposing /metrics,
// matching the connection engine's own loopback-only binding policy.
func newMetricsServer(port int, mc *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mc.Handler())
	return &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
}

func runMetricsServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics server listening", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
