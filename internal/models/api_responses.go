// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package models

// SuccessResponse is the envelope for every 2xx response.
//
//	{"success": true, "data": [...]}
//	{"success": true, "message": "User registered successfully", "data": {...}}
//
// Data has no omitempty: an empty listing is sent as "data": [].
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the envelope for every 4xx and 5xx response.
//
//	{"success": false, "message": "farm_id is required"}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CountResult is the payload of count endpoints.
type CountResult struct {
	Count int64 `json:"count"`
}

// TokenValidity is the payload of the reset token check.
type TokenValidity struct {
	Valid bool `json:"valid"`
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Datastore string `json:"datastore"`
	Driver    string `json:"driver"`
}
