// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"context"

	"github.com/tomtom215/sensorhub/internal/auth"
	"github.com/tomtom215/sensorhub/internal/readings"
	ws "github.com/tomtom215/sensorhub/internal/websocket"
)

// HealthChecker reports datastore reachability.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Driver() string
}

// Handler holds the services behind every route. It keeps no per-request
// state and is safe for concurrent use.
type Handler struct {
	readings *readings.Service
	accounts *auth.Service
	health   HealthChecker

	hub            *ws.Hub // nil disables /ws/readings
	allowedOrigins []string
}

// NewHandler creates a Handler.
func NewHandler(readingsSvc *readings.Service, accounts *auth.Service, health HealthChecker) *Handler {
	return &Handler{readings: readingsSvc, accounts: accounts, health: health}
}

// SetLiveFeed enables GET /ws/readings on hub. Browser connections must come
// from one of origins; "*" allows any.
func (h *Handler) SetLiveFeed(hub *ws.Hub, origins []string) {
	h.hub = hub
	h.allowedOrigins = origins
}
