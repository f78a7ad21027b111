// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sensorhub/internal/audit"
	"github.com/tomtom215/sensorhub/internal/auth"
	"github.com/tomtom215/sensorhub/internal/database/query"
	"github.com/tomtom215/sensorhub/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware) *Router {
	return &Router{handler: handler, chiMiddleware: chiMW, auth: authMW}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(audit.CaptureSource)
	r.Use(recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(APISecurityHeaders())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h := router.handler
	limit := router.chiMiddleware.RateLimit()

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Accounts
	r.Group(func(r chi.Router) {
		r.Use(limit)

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/request-password-reset", h.RequestPasswordReset)
		r.Post("/reset-password", h.ResetPassword)
		r.Get("/validate-reset-token", h.ValidateResetToken)
		r.Post("/validate-reset-token", h.ValidateResetToken)
		r.Get("/users/count", h.CountUsers)
	})

	// Readings
	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Use(router.auth.Authenticate)

		r.Get("/sensor_data", h.listReadings(query.SourceSensor))
		r.Post("/sensor_data", h.CreateReading)
		r.Put("/sensor_data/{id}", h.UpdateReading)
		r.Delete("/sensor_data/{id}", h.DeleteReading)
		r.Get("/latest_sensor_data", h.latestReadings(query.SourceSensor))
		r.Get("/sensors", h.listSensors(query.SourceSensor))
		r.Get("/farms", h.Farms)
		r.Get("/ws/readings", h.StreamReadings)

		r.Get("/gnss_devices", h.GnssDevices)
		r.Get("/gnss_sensor_data", h.listReadings(query.SourceGNSS))
		r.Get("/gnss_latest_data", h.latestReadings(query.SourceGNSS))
		r.Get("/gnss_sensors", h.listSensors(query.SourceGNSS))

		// Older clients use these names.
		r.Get("/gnss_data", h.listReadings(query.SourceGNSS))
		r.Get("/latest_gnss_data", h.latestReadings(query.SourceGNSS))
	})

	return r
}
