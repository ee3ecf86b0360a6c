package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/splogdes/fuznet/pkg/metrics"
	"github.com/splogdes/fuznet/pkg/reporting"
)

// serveMetrics starts a background HTTP listener exposing reg at
// /metrics and returns a func that shuts it down. A bind failure is
// returned immediately rather than surfacing later from the goroutine.
func serveMetrics(addr string, reg *metrics.Registry, logger *reporting.Logger) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener stopped", "error", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
