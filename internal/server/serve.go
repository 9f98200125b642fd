package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rootfind/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down and waits for running solves.
func ListenAndServe(ctx context.Context, addr string, reg *prometheus.Registry) error {
	s := New(reg)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	logger.Info("server stopped")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
