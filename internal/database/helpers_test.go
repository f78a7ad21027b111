// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/sensorhub/internal/config"
)

// embeddedDrivers are exercised by every store test. Postgres runs only
// under the integration build tag.
var embeddedDrivers = []string{config.DriverSQLite, config.DriverDuckDB}

func testDatabaseConfig(t *testing.T, driver string) *config.DatabaseConfig {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:         driver,
		MaxOpenConns:   4,
		MaxIdleConns:   4,
		ConnectTimeout: 5 * time.Second,
	}
	switch driver {
	case config.DriverSQLite:
		// A unique name per test keeps shared-cache databases apart.
		name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
		cfg.DSN = "file:" + name + "?mode=memory&cache=shared"
	case config.DriverDuckDB:
		cfg.DSN = ""
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	return cfg
}

// setupTestStore opens a migrated, empty datastore for driver.
func setupTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	return setupTestStoreWithBreaker(t, driver, config.BreakerConfig{
		FailureThreshold: 5,
		Timeout:          time.Minute,
		MaxRequests:      1,
	})
}

func setupTestStoreWithBreaker(t *testing.T, driver string, bc config.BreakerConfig) *Store {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, testDatabaseConfig(t, driver))
	if err != nil {
		t.Fatalf("Failed to open %s datastore: %v", driver, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewStore(db, bc)
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func strPtr(s string) *string { return &s }

func mustExec(t *testing.T, s *Store, sqlText string, args ...interface{}) {
	t.Helper()
	if _, err := s.db.conn.ExecContext(context.Background(), s.db.conn.Rebind(sqlText), args...); err != nil {
		t.Fatalf("exec %q: %v", sqlText, err)
	}
}

func seedSensor(t *testing.T, s *Store, sensorID, farmID, name string, value float64, at time.Time) {
	t.Helper()
	var n interface{}
	if name != "" {
		n = name
	}
	mustExec(t, s, `INSERT INTO sensor_data (sensor_id, farm_id, name, value, "timestamp") VALUES (?, ?, ?, ?, ?)`,
		sensorID, farmID, n, value, at.UTC())
}

func seedGnss(t *testing.T, s *Store, table, gnssID, sensorID string, value float64, at time.Time) {
	t.Helper()
	mustExec(t, s, `INSERT INTO `+table+` (gnss_id, sensor_id, value, "timestamp") VALUES (?, ?, ?, ?)`,
		gnssID, sensorID, value, at.UTC())
}

func seedFarm(t *testing.T, s *Store, farmID, name, location string) {
	t.Helper()
	mustExec(t, s, `INSERT INTO farms (farm_id, name, location) VALUES (?, ?, ?)`, farmID, name, location)
}

func forEachDriver(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Helper()
	for _, driver := range embeddedDrivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, setupTestStore(t, driver))
		})
	}
}
