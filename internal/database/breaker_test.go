// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/database/query"
)

func TestIsHealthyOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"not found", fmt.Errorf("op: %w", ErrNotFound), true},
		{"duplicate", errors.Join(ErrDuplicate, errors.New("driver")), true},
		{"canceled", context.Canceled, true},
		{"deadline", context.DeadlineExceeded, false},
		{"driver failure", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHealthyOutcome(tt.err); got != tt.want {
				t.Errorf("isHealthyOutcome(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	s := setupTestStoreWithBreaker(t, config.DriverSQLite, config.BreakerConfig{
		FailureThreshold: 2,
		Timeout:          time.Hour,
		MaxRequests:      1,
	})
	ctx := context.Background()

	// Missing rows must not count against the datastore.
	for i := 0; i < 3; i++ {
		if _, err := s.FarmIDByName(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("FarmIDByName error = %v, want ErrNotFound", err)
		}
	}

	if _, err := s.db.conn.ExecContext(ctx, "DROP TABLE sensor_data"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := s.ListReadings(ctx, query.SourceSensor, query.Filter{EntityID: "farm1"})
		if err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: error = %v, want driver failure", i, err)
		}
	}

	_, err := s.ListReadings(ctx, query.SourceSensor, query.Filter{EntityID: "farm1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error after threshold = %v, want ErrUnavailable", err)
	}

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping should bypass the breaker, got %v", err)
	}
}
