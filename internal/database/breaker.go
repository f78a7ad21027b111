// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
)

const breakerName = "datastore"

func newBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	metrics.SetBreakerState(breakerName, int(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isHealthyOutcome,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// isHealthyOutcome reports whether err says nothing about datastore health.
// Missing rows, duplicates and caller cancellations do not trip the breaker.
func isHealthyOutcome(err error) bool {
	return err == nil ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, context.Canceled)
}

// execute runs fn through the breaker and records metrics for op. A
// rejected call returns ErrUnavailable without touching the datastore.
func execute[T any](ctx context.Context, s *Store, op, source string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	out, err := s.breaker.Execute(func() (any, error) {
		v, err := fn(ctx)
		return v, translateError(err)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordBreakerRejection(breakerName)
		return zero, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	var failure error
	if !isHealthyOutcome(err) {
		failure = err
	}
	metrics.RecordDBQuery(op, source, time.Since(start), rowCount(out), failure)

	if err != nil {
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

func rowCount(v any) int {
	if v == nil {
		return -1
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		return rv.Len()
	}
	return -1
}
