// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"time"

	"github.com/tomtom215/sensorhub/internal/database/query"
	"github.com/tomtom215/sensorhub/internal/models"
)

const auditSource = "audit"

// SaveAuditEvent appends one event to the audit trail.
func (s *Store) SaveAuditEvent(ctx context.Context, ev models.AuditEvent) error {
	_, err := execute(ctx, s, "save_audit_event", auditSource, func(ctx context.Context) (struct{}, error) {
		_, err := s.db.conn.ExecContext(ctx, s.db.conn.Rebind(query.InsertAuditEvent),
			ev.ID, ev.Timestamp.UTC(), ev.Type, ev.Outcome, ev.Actor, ev.Target,
			ev.SourceIP, ev.UserAgent, ev.RequestID, ev.Description)
		return struct{}{}, err
	})
	return err
}

// DeleteAuditEventsBefore removes events older than cutoff and returns
// how many were deleted.
func (s *Store) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return execute(ctx, s, "delete_audit_events", auditSource, func(ctx context.Context) (int64, error) {
		res, err := s.db.conn.ExecContext(ctx, s.db.conn.Rebind(query.DeleteAuditEventsBefore), cutoff.UTC())
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
}
