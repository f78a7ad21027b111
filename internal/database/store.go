// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/database/query"
)

// Store runs readings and account statements against a DB. It is safe for
// concurrent use; all state lives in the connection pool.
type Store struct {
	db      *DB
	breaker *gobreaker.CircuitBreaker[any]
}

// NewStore wraps db with a circuit breaker configured by cfg.
func NewStore(db *DB, cfg config.BreakerConfig) *Store {
	return &Store{db: db, breaker: newBreaker(cfg)}
}

// Ping checks the datastore without going through the breaker, so health
// checks still report while the breaker is open.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Driver returns the datastore driver name.
func (s *Store) Driver() string {
	return s.db.Driver()
}

func (s *Store) selectRows(ctx context.Context, dest interface{}, stmt query.Statement) error {
	return s.db.conn.SelectContext(ctx, dest, s.db.conn.Rebind(stmt.SQL), stmt.Args...)
}

func (s *Store) getRow(ctx context.Context, dest interface{}, sqlText string, args ...interface{}) error {
	return s.db.conn.GetContext(ctx, dest, s.db.conn.Rebind(sqlText), args...)
}
