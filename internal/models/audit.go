// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package models

import "time"

// AuditEvent is one row of the audit trail.
type AuditEvent struct {
	ID          string    `json:"id" db:"id"`
	Timestamp   time.Time `json:"timestamp" db:"occurred_at"`
	Type        string    `json:"type" db:"event_type"`
	Outcome     string    `json:"outcome" db:"outcome"`
	Actor       string    `json:"actor,omitempty" db:"actor"`
	Target      string    `json:"target,omitempty" db:"target"`
	SourceIP    string    `json:"source_ip,omitempty" db:"source_ip"`
	UserAgent   string    `json:"user_agent,omitempty" db:"user_agent"`
	RequestID   string    `json:"request_id,omitempty" db:"request_id"`
	Description string    `json:"description,omitempty" db:"description"`
}

// Audit event types.
const (
	AuditAccountRegister      = "account.register"
	AuditAccountLogin         = "account.login"
	AuditPasswordResetRequest = "account.password_reset_request"
	AuditPasswordReset        = "account.password_reset"
	AuditReadingCreate        = "reading.create"
	AuditReadingUpdate        = "reading.update"
	AuditReadingDelete        = "reading.delete"
)

// Audit outcomes.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)
