// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package query

const (
	InsertAuditEvent = `INSERT INTO audit_events ` +
		`(id, occurred_at, event_type, outcome, actor, target, source_ip, user_agent, request_id, description) ` +
		`VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	DeleteAuditEventsBefore = `DELETE FROM audit_events WHERE occurred_at < ?`
)
