// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package services

import (
	"context"
	"time"

	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
)

// Pinger reports datastore reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatastoreMonitor periodically pings the datastore.
type DatastoreMonitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	report   func(up bool)

	// last known state; nil until the first check
	up *bool
}

// NewDatastoreMonitor builds a monitor. A non-positive interval becomes 30s.
// Each check is bounded by the smaller of interval and 5s.
func NewDatastoreMonitor(pinger Pinger, interval time.Duration) *DatastoreMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := 5 * time.Second
	if interval < timeout {
		timeout = interval
	}
	return &DatastoreMonitor{
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		report:   metrics.SetDatastoreUp,
	}
}

// Serve implements suture.Service. It checks once immediately and then on
// every tick until ctx is canceled.
func (m *DatastoreMonitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *DatastoreMonitor) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.pinger.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	up := err == nil
	m.report(up)

	if m.up != nil && *m.up == up {
		return
	}
	m.up = &up

	logger := logging.WithComponent("datastore-monitor")
	if up {
		logger.Info().Msg("Datastore reachable")
	} else {
		logger.Warn().Err(err).Msg("Datastore unreachable")
	}
}

func (m *DatastoreMonitor) String() string {
	return "datastore-monitor"
}
