// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package database owns the relational datastore: opening it, bootstrapping its
schema, and running the statements defined in the query subpackage.

Three drivers are supported behind one sqlx handle:

  - duckdb (default): github.com/duckdb/duckdb-go/v2, file or in-memory
  - postgres: github.com/lib/pq
  - sqlite: modernc.org/sqlite, pure Go

All statements are written with "?" placeholders and rebound per driver by
sqlx. Every store operation runs through a gobreaker circuit breaker and is
recorded in the sensorhub_db_* Prometheus metrics.

Errors:

  - ErrNotFound: a write or lookup matched no row
  - ErrDuplicate: a unique constraint rejected a write
  - ErrUnavailable: the circuit breaker is open

Any other error is a driver failure. Callers log it and must not show its
text to API clients.

Lifecycle:

	db, err := database.Open(ctx, &cfg.Database)
	if err != nil { ... }
	defer db.Close()
	if err := db.Migrate(ctx); err != nil { ... }
	store := database.NewStore(db, cfg.Breaker)
*/
package database
