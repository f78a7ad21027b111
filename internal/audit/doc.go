// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package audit keeps a persistent trail of account and write events.
//
// Events flow producer to consumer:
//
//	Logger.Record() -> buffered chan -> Logger.Serve() -> Store
//
// Record never blocks the request path: when the buffer is full the event
// is dropped, logged and counted in sensorhub_audit_events_total. Serve
// runs under the supervisor's data layer, persists events one by one and
// prunes rows older than the retention window on every cleanup tick. On
// shutdown it drains what is already queued before returning.
//
// Record fills in what the caller does not know: an id, the timestamp, the
// request id from logging context, the client address captured by
// CaptureSource, and the JWT subject when the request was authenticated.
//
// # Event types
//
//	account.register                 success, or failure when taken
//	account.login                    success or failure
//	account.password_reset_request   success, or failure for unknown email
//	account.password_reset           success or failure
//	reading.create / update / delete success only
package audit
