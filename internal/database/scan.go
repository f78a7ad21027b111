// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/sensorhub/internal/models"
)

// textTimeLayouts covers what SQLite hands back when a column loses its
// declared type, for example through a UNION.
var textTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02",
}

// dbTime scans timestamps from every supported driver into UTC.
type dbTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range textTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

func (t dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// readingRow is the shape every readings template selects. Sensor
// templates alias farm_id and GNSS templates alias gnss_id to entity_id.
type readingRow struct {
	ID        int64          `db:"id"`
	EntityID  string         `db:"entity_id"`
	SensorID  string         `db:"sensor_id"`
	Name      sql.NullString `db:"name"`
	Value     float64        `db:"value"`
	Timestamp dbTime         `db:"timestamp"`
}

func (r readingRow) sensorReading() models.Reading {
	return models.Reading{
		ID:        r.ID,
		SensorID:  r.SensorID,
		FarmID:    r.EntityID,
		Name:      nullString(r.Name),
		Value:     r.Value,
		Timestamp: r.Timestamp.Time,
	}
}

func (r readingRow) gnssReading() models.Reading {
	return models.Reading{
		ID:        r.ID,
		SensorID:  r.SensorID,
		GnssID:    r.EntityID,
		Value:     r.Value,
		Timestamp: r.Timestamp.Time,
	}
}

type sensorRow struct {
	SensorID string         `db:"sensor_id"`
	Name     sql.NullString `db:"name"`
}

type farmRow struct {
	FarmID   string         `db:"farm_id"`
	Name     sql.NullString `db:"name"`
	Location sql.NullString `db:"location"`
}

type userRow struct {
	ID               int64          `db:"id"`
	Email            string         `db:"email"`
	Username         string         `db:"username"`
	PasswordHash     string         `db:"password_hash"`
	ResetToken       sql.NullString `db:"reset_token"`
	ResetTokenExpiry dbTime         `db:"reset_token_expiry"`
	CreatedAt        dbTime         `db:"created_at"`
}

func (r userRow) user() models.User {
	return models.User{
		ID:               r.ID,
		Email:            r.Email,
		Username:         r.Username,
		PasswordHash:     r.PasswordHash,
		ResetToken:       nullString(r.ResetToken),
		ResetTokenExpiry: r.ResetTokenExpiry.ptr(),
		CreatedAt:        r.CreatedAt.Time,
	}
}
