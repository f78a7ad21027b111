// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package models

import "time"

// Reading is a single measurement. Sensor readings carry FarmID and an
// optional Name; GNSS readings carry GnssID and never a name. Rows from the
// two physical GNSS tables are indistinguishable here.
type Reading struct {
	ID        int64     `json:"id"`
	SensorID  string    `json:"sensor_id"`
	FarmID    string    `json:"farm_id,omitempty"`
	GnssID    string    `json:"gnss_id,omitempty"`
	Name      *string   `json:"name,omitempty"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadingInput is the writable part of a sensor reading.
type ReadingInput struct {
	SensorID  string
	FarmID    string
	Name      *string
	Value     float64
	Timestamp time.Time
}

// SensorInfo identifies one sensor. Name is only known for farm sensors.
type SensorInfo struct {
	SensorID string  `json:"sensor_id"`
	Name     *string `json:"name,omitempty"`
}

// Farm is a farm id seen in sensor_data, enriched from the farms table.
type Farm struct {
	FarmID   string  `json:"farm_id"`
	Name     *string `json:"name"`
	Location *string `json:"location"`
}
