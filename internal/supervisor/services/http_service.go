// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/sensorhub/internal/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives. Tests swap in
// a fake so Serve can be exercised without binding a port.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the readings API listener in the api-layer
// supervisor.
//
// http.Server blocks in ListenAndServe and stops through a separate
// Shutdown call; suture wants one Serve(ctx) that returns when ctx ends.
// Serve bridges the two:
//
//  1. ListenAndServe runs in its own goroutine.
//  2. A listener failure (port in use, permission) is returned wrapped,
//     and suture restarts the service with backoff.
//  3. On cancellation Shutdown gets shutdownTimeout to drain in-flight
//     requests, including long /sensor_data listings. Hijacked websocket
//     connections are not tracked by Shutdown; the hub closes those.
//
// Wiring, from cmd/server:
//
//	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout falls
// back to 10s. When server is an *http.Server its Addr is logged.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	svc := &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
	if s, ok := server.(*http.Server); ok {
		svc.addr = s.Addr
	}
	return svc
}

// Serve implements suture.Service.
//
// It returns ctx.Err() after a clean drain, the Shutdown error when the
// drain overran shutdownTimeout, or the listener error. http.ErrServerClosed
// is the normal result of Shutdown and is never reported.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(h.String())

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info().Str("addr", h.addr).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled, so the drain gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		start := time.Now()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh

		logger.Info().Dur("drain", time.Since(start)).Msg("HTTP server stopped")
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
