// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package api exposes the readings and account services over HTTP.

Routing uses go-chi/chi. Every response body is an envelope:

	{"success": true, "data": ...}
	{"success": false, "message": "..."}

Route groups:

  - /, /health, /metrics: public, no rate limit beyond the global one
  - /register, /login, /request-password-reset, /reset-password,
    /validate-reset-token, /users/count: public account routes
  - readings routes (/sensor_data, /gnss_sensor_data, ...): protected by
    auth.Middleware, which is a no-op unless security.auth_mode is "jwt"
  - /ws/readings: websocket feed of reading writes, in the readings group

Service errors are mapped to status codes in one place, writeServiceError.
Driver error text is logged, never returned to clients.
*/
package api
