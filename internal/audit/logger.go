// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sensorhub/internal/auth"
	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
)

// Store persists audit events. *database.Store implements it.
type Store interface {
	SaveAuditEvent(ctx context.Context, ev models.AuditEvent) error
	DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const writeTimeout = 5 * time.Second

// Logger buffers audit events and writes them from Serve.
type Logger struct {
	store  Store
	cfg    config.AuditConfig
	events chan models.AuditEvent
	now    func() time.Time
}

// NewLogger creates a Logger. Nothing is written until Serve runs.
func NewLogger(store Store, cfg config.AuditConfig) *Logger {
	size := cfg.BufferSize
	if size < 1 {
		size = 1
	}
	return &Logger{
		store:  store,
		cfg:    cfg,
		events: make(chan models.AuditEvent, size),
		now:    time.Now,
	}
}

// Record queues ev. It never blocks; a full buffer drops the event.
func (l *Logger) Record(ctx context.Context, ev models.AuditEvent) {
	if !l.cfg.Enabled {
		return
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.now().UTC()
	}
	if ev.RequestID == "" {
		ev.RequestID = logging.RequestIDFromContext(ctx)
	}
	if src, ok := SourceFromContext(ctx); ok {
		if ev.SourceIP == "" {
			ev.SourceIP = src.IPAddress
		}
		if ev.UserAgent == "" {
			ev.UserAgent = src.UserAgent
		}
	}
	if ev.Actor == "" {
		if claims, ok := auth.ClaimsFromContext(ctx); ok {
			ev.Actor = claims.Username
		}
	}

	select {
	case l.events <- ev:
	default:
		metrics.RecordAuditEvent("dropped")
		logging.Ctx(ctx).Warn().Str("event_type", ev.Type).Msg("Audit buffer full, dropping event")
	}
}

// Serve implements suture.Service.
func (l *Logger) Serve(ctx context.Context) error {
	interval := l.cfg.CleanupInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.prune(ctx)
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case ev := <-l.events:
			l.write(ctx, ev)
		case <-ticker.C:
			l.prune(ctx)
		}
	}
}

func (l *Logger) String() string {
	return "audit-logger"
}

// drain writes whatever is already queued, with a fresh deadline per event
// since the serving context is gone.
func (l *Logger) drain() {
	for {
		select {
		case ev := <-l.events:
			l.write(context.Background(), ev)
		default:
			return
		}
	}
}

func (l *Logger) write(ctx context.Context, ev models.AuditEvent) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := l.store.SaveAuditEvent(writeCtx, ev); err != nil {
		metrics.RecordAuditEvent("failed")
		logging.Error().Err(err).Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("Failed to save audit event")
		return
	}
	metrics.RecordAuditEvent("written")
}

func (l *Logger) prune(ctx context.Context) {
	if l.cfg.Retention <= 0 {
		return
	}
	pruneCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	n, err := l.store.DeleteAuditEventsBefore(pruneCtx, l.now().Add(-l.cfg.Retention))
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn().Err(err).Msg("Audit retention cleanup failed")
		}
		return
	}
	if n > 0 {
		logging.Info().Int64("deleted", n).Msg("Pruned audit events")
	}
}
