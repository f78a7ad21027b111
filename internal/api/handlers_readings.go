// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sensorhub/internal/database/query"
	"github.com/tomtom215/sensorhub/internal/readings"
)

// readingsQuery collects the query string of a readings request.
func readingsQuery(r *http.Request, src query.Source) readings.Query {
	v := r.URL.Query()
	q := readings.Query{
		EntityID:  v.Get(src.EntityColumn()),
		SensorID:  v.Get("sensor_id"),
		StartDate: v.Get("start_date"),
		EndDate:   v.Get("end_date"),
	}
	if src == query.SourceSensor {
		q.FarmName = v.Get("farm_name")
	}
	return q
}

func (h *Handler) listReadings(src query.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.readings.List(r.Context(), src, readingsQuery(r, src))
		if err != nil {
			writeServiceError(w, r, err, msgInternal)
			return
		}
		respondData(w, http.StatusOK, rows)
	}
}

func (h *Handler) latestReadings(src query.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.readings.Latest(r.Context(), src, readingsQuery(r, src))
		if err != nil {
			writeServiceError(w, r, err, msgInternal)
			return
		}
		respondData(w, http.StatusOK, rows)
	}
}

func (h *Handler) listSensors(src query.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.readings.Sensors(r.Context(), src, readingsQuery(r, src))
		if err != nil {
			writeServiceError(w, r, err, msgInternal)
			return
		}
		respondData(w, http.StatusOK, rows)
	}
}

// GnssDevices lists GNSS device ids as [{"gnss_id": "..."}].
func (h *Handler) GnssDevices(w http.ResponseWriter, r *http.Request) {
	ids, err := h.readings.Entities(r.Context(), query.SourceGNSS)
	if err != nil {
		writeServiceError(w, r, err, msgInternal)
		return
	}
	rows := make([]map[string]string, len(ids))
	for i, id := range ids {
		rows[i] = map[string]string{query.ColGnssID: id}
	}
	respondData(w, http.StatusOK, rows)
}

// Farms lists farms that have readings.
func (h *Handler) Farms(w http.ResponseWriter, r *http.Request) {
	farms, err := h.readings.Farms(r.Context())
	if err != nil {
		writeServiceError(w, r, err, msgInternal)
		return
	}
	respondData(w, http.StatusOK, farms)
}

// CreateReading handles POST /sensor_data.
func (h *Handler) CreateReading(w http.ResponseWriter, r *http.Request) {
	var req readings.ReadingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reading, err := h.readings.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, msgInternal)
		return
	}
	respondMessage(w, http.StatusCreated, "Sensor reading created", reading)
}

// UpdateReading handles PUT /sensor_data/{id}.
func (h *Handler) UpdateReading(w http.ResponseWriter, r *http.Request) {
	var req readings.ReadingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reading, err := h.readings.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, msgInternal)
		return
	}
	respondMessage(w, http.StatusOK, "Sensor reading updated", reading)
}

// DeleteReading handles DELETE /sensor_data/{id}.
func (h *Handler) DeleteReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.readings.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, msgInternal)
		return
	}
	respondMessage(w, http.StatusOK, "Sensor reading deleted", reading)
}
