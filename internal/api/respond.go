// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/auth"
	"github.com/tomtom215/sensorhub/internal/database"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/readings"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

const (
	msgUnavailable = "Service temporarily unavailable"
	msgInternal    = "Internal Server Error"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes v with status. API responses are never cached.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope around data.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, models.SuccessResponse{Success: true, Data: data})
}

// respondMessage writes a success envelope with a message and optional data.
func respondMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, models.SuccessResponse{Success: true, Message: message, Data: data})
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Success: false, Message: message})
}

// writeServiceError maps a service error to its status and client message.
// fallback is used for unexpected failures; the cause is only logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		validationErr *readings.ValidationError
		inputErr      *auth.InputError
		notFoundErr   *readings.NotFoundError
		datastoreErr  *readings.DatastoreError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &inputErr):
		respondError(w, http.StatusBadRequest, inputErr.Message)
	case errors.As(err, &notFoundErr):
		respondError(w, http.StatusNotFound, notFoundErr.Message)
	case errors.Is(err, auth.ErrUserExists):
		respondError(w, http.StatusConflict, "User already exists with this email or username")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrInvalidResetToken):
		respondError(w, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, database.ErrUnavailable):
		logging.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Datastore circuit open")
		respondError(w, http.StatusServiceUnavailable, msgUnavailable)
	case errors.As(err, &datastoreErr):
		// Already logged by the service.
		respondError(w, http.StatusInternalServerError, datastoreErr.Message)
	default:
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("Request failed")
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst zero so
// the service reports the missing fields. On malformed input it writes a
// 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected request body")
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
