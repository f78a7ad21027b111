// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package middleware holds HTTP middleware that is independent of the API
// handlers: request ids and Prometheus instrumentation. Both have the
// func(http.Handler) http.Handler shape expected by chi's Use.
package middleware
