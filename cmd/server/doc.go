// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Command sensorhub serves farm sensor and GNSS readings over HTTP.

# Commands

	sensorhub serve     run the API (default when no command is given)
	sensorhub migrate   create missing tables and exit
	sensorhub version   print build information

# Configuration

Settings come from, lowest priority first: built-in defaults, a config file
(CONFIG_PATH or ./config.yaml), a .env file, and environment variables.
The common ones:

	DB_DRIVER         duckdb (default), postgres or sqlite
	DATABASE_URL      DSN; empty means in-memory for duckdb and sqlite
	HTTP_PORT         listen port, default 5000
	AUTH_MODE         none (default) or jwt
	JWT_SECRET        32+ characters; enables tokens on login
	CORS_ORIGINS      comma separated list
	LOG_LEVEL         trace, debug, info, warn, error
	AUDIT_ENABLED     record account and reading writes, default true

# Supervision

serve runs under a suture tree:

	sensorhub
	├── data-layer
	│   ├── datastore-monitor
	│   └── audit-logger (AUDIT_ENABLED, on by default)
	└── api-layer
	    ├── websocket-hub
	    └── http-server

SIGINT and SIGTERM cancel the tree. In-flight requests get
server.shutdown_timeout to finish.

# Build information

	go build -ldflags "-X main.version=1.2.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%FT%TZ)" ./cmd/server
*/
package main
