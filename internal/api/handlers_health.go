// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

// healthPingTimeout bounds the datastore ping in /health.
const healthPingTimeout = 2 * time.Second

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	respondMessage(w, http.StatusOK, "Sensor Data API is running", nil)
}

// Health pings the datastore: 200 when reachable, 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	status := models.HealthStatus{Status: "healthy", Datastore: "connected", Driver: h.health.Driver()}
	code := http.StatusOK
	if err := h.health.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check ping failed")
		status.Status, status.Datastore = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, models.SuccessResponse{Success: code == http.StatusOK, Data: status})
}
