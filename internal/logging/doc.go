// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package logging provides the process-wide zerolog logger for Sensorhub.
//
// Every package logs through this wrapper rather than constructing its own
// zerolog.Logger, so level and format are controlled from one place.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("driver", "duckdb").Msg("Datastore opened")
//	logging.Error().Err(err).Msg("Query failed")
//
//	// Inside a request: request_id and correlation_id are attached.
//	logging.Ctx(ctx).Warn().Msg("Farm not found")
//
// # Datastore errors
//
// Driver error text is written to the log with Err(err) and never returned
// to HTTP clients. Handlers log first and then respond with a generic message.
//
// # slog interop
//
// The supervisor tree (sutureslog) expects a *slog.Logger. NewSlogLogger
// returns one that forwards records to the zerolog logger.
package logging
