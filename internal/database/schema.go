// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
)

// Bootstrap schema. Every statement is idempotent so Migrate can run on
// each start; there is no versioned migration history.

var duckdbSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS sensor_data_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS gnss_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS gnss2_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS sensor_data (
		id BIGINT PRIMARY KEY DEFAULT nextval('sensor_data_id_seq'),
		sensor_id VARCHAR NOT NULL,
		farm_id VARCHAR NOT NULL,
		name VARCHAR,
		value DOUBLE NOT NULL,
		"timestamp" TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gnss (
		id BIGINT PRIMARY KEY DEFAULT nextval('gnss_id_seq'),
		gnss_id VARCHAR NOT NULL,
		sensor_id VARCHAR NOT NULL,
		value DOUBLE NOT NULL,
		"timestamp" TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gnss2 (
		id BIGINT PRIMARY KEY DEFAULT nextval('gnss2_id_seq'),
		gnss_id VARCHAR NOT NULL,
		sensor_id VARCHAR NOT NULL,
		value DOUBLE NOT NULL,
		"timestamp" TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS farms (
		farm_id VARCHAR PRIMARY KEY,
		name VARCHAR,
		location VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
		email VARCHAR NOT NULL UNIQUE,
		username VARCHAR NOT NULL UNIQUE,
		password_hash VARCHAR NOT NULL,
		reset_token VARCHAR,
		reset_token_expiry TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id VARCHAR PRIMARY KEY,
		occurred_at TIMESTAMP NOT NULL,
		event_type VARCHAR NOT NULL,
		outcome VARCHAR NOT NULL,
		actor VARCHAR NOT NULL,
		target VARCHAR NOT NULL,
		source_ip VARCHAR NOT NULL,
		user_agent VARCHAR NOT NULL,
		request_id VARCHAR NOT NULL,
		description VARCHAR NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_occurred ON audit_events (occurred_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sensor_data (
		id BIGSERIAL PRIMARY KEY,
		sensor_id TEXT NOT NULL,
		farm_id TEXT NOT NULL,
		name TEXT,
		value DOUBLE PRECISION NOT NULL,
		"timestamp" TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sensor_data_farm_ts ON sensor_data (farm_id, "timestamp")`,
	`CREATE TABLE IF NOT EXISTS gnss (
		id BIGSERIAL PRIMARY KEY,
		gnss_id TEXT NOT NULL,
		sensor_id TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		"timestamp" TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gnss_device_ts ON gnss (gnss_id, "timestamp")`,
	`CREATE TABLE IF NOT EXISTS gnss2 (
		id BIGSERIAL PRIMARY KEY,
		gnss_id TEXT NOT NULL,
		sensor_id TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		"timestamp" TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gnss2_device_ts ON gnss2 (gnss_id, "timestamp")`,
	`CREATE TABLE IF NOT EXISTS farms (
		farm_id TEXT PRIMARY KEY,
		name TEXT,
		location TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		reset_token TEXT,
		reset_token_expiry TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL,
		event_type TEXT NOT NULL,
		outcome TEXT NOT NULL,
		actor TEXT NOT NULL,
		target TEXT NOT NULL,
		source_ip TEXT NOT NULL,
		user_agent TEXT NOT NULL,
		request_id TEXT NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_occurred ON audit_events (occurred_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sensor_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sensor_id TEXT NOT NULL,
		farm_id TEXT NOT NULL,
		name TEXT,
		value REAL NOT NULL,
		"timestamp" TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sensor_data_farm_ts ON sensor_data (farm_id, "timestamp")`,
	`CREATE TABLE IF NOT EXISTS gnss (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		gnss_id TEXT NOT NULL,
		sensor_id TEXT NOT NULL,
		value REAL NOT NULL,
		"timestamp" TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gnss_device_ts ON gnss (gnss_id, "timestamp")`,
	`CREATE TABLE IF NOT EXISTS gnss2 (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		gnss_id TEXT NOT NULL,
		sensor_id TEXT NOT NULL,
		value REAL NOT NULL,
		"timestamp" TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gnss2_device_ts ON gnss2 (gnss_id, "timestamp")`,
	`CREATE TABLE IF NOT EXISTS farms (
		farm_id TEXT PRIMARY KEY,
		name TEXT,
		location TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		reset_token TEXT,
		reset_token_expiry TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		occurred_at TIMESTAMP NOT NULL,
		event_type TEXT NOT NULL,
		outcome TEXT NOT NULL,
		actor TEXT NOT NULL,
		target TEXT NOT NULL,
		source_ip TEXT NOT NULL,
		user_agent TEXT NOT NULL,
		request_id TEXT NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_occurred ON audit_events (occurred_at)`,
}

func schemaFor(driver string) ([]string, error) {
	switch driver {
	case config.DriverDuckDB:
		return duckdbSchema, nil
	case config.DriverPostgres:
		return postgresSchema, nil
	case config.DriverSQLite:
		return sqliteSchema, nil
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}
}

// Migrate creates any missing tables, sequences and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	stmts, err := schemaFor(db.driver)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	logging.Info().Str("driver", db.driver).Int("statements", len(stmts)).Msg("Schema ready")
	return nil
}
