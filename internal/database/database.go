// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
)

// defaultSQLiteDSN is a process-wide shared in-memory database. Every pooled
// connection must see the same data, which a plain ":memory:" would not give.
const defaultSQLiteDSN = "file:sensorhub?mode=memory&cache=shared"

//nolint:gochecknoinits // sqlx does not know these driver names
func init() {
	sqlx.BindDriver(config.DriverDuckDB, sqlx.QUESTION)
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// DB is an open, pooled datastore handle.
type DB struct {
	conn   *sqlx.DB
	driver string
	cfg    *config.DatabaseConfig
}

// Open connects to the configured datastore, applies pool settings and
// pings it within cfg.ConnectTimeout.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	dsn, err := driverDSN(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s datastore: %w", cfg.Driver, err)
	}

	db := &DB{conn: conn, driver: cfg.Driver, cfg: cfg}
	db.configureConnectionPool()

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to reach %s datastore: %w", cfg.Driver, err)
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Datastore connected")

	return db, nil
}

// driverDSN fills in defaults for embedded drivers. DuckDB file paths get
// their parent directory created; SQLite gets its time format pinned so
// stored timestamps compare correctly as text.
func driverDSN(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverDuckDB:
		if cfg.DSN != "" && !strings.HasPrefix(cfg.DSN, ":memory:") {
			path := cfg.DSN
			if i := strings.IndexByte(path, '?'); i >= 0 {
				path = path[:i]
			}
			if dir := filepath.Dir(path); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
				}
			}
		}
		return cfg.DSN, nil
	case config.DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		if !strings.Contains(dsn, "_time_format=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_time_format=sqlite"
		}
		return dsn, nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return "", fmt.Errorf("postgres requires a DSN")
		}
		return cfg.DSN, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(db.cfg.MaxOpenConns)
	db.conn.SetMaxIdleConns(db.cfg.MaxIdleConns)
	db.conn.SetConnMaxLifetime(db.cfg.ConnMaxLifetime)
	db.conn.SetConnMaxIdleTime(db.cfg.ConnMaxIdleTime)
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Conn exposes the sqlx handle for tests and tooling.
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the pool. It is safe to call on a nil DB.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close datastore: %w", err)
	}
	logging.Info().Str("driver", db.driver).Msg("Datastore closed")
	return nil
}
