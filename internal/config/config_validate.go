// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package config

import (
	"fmt"

	"github.com/tomtom215/sensorhub/internal/logging"
)

const minJWTSecretLength = 32

// Validate checks the loaded configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Security.validate(); err != nil {
		return err
	}
	if c.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("breaker.failure_threshold must be at least 1")
	}
	if err := c.Audit.validate(); err != nil {
		return err
	}
	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	switch d.Driver {
	case DriverDuckDB, DriverSQLite:
	case DriverPostgres:
		if d.DSN == "" {
			return fmt.Errorf("database.dsn (DATABASE_URL) is required for driver %q", d.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of duckdb, postgres, sqlite; got %q", d.Driver)
	}
	if d.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if d.MaxIdleConns < 0 || d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns")
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port)
	}
	return nil
}

func (s *SecurityConfig) validate() error {
	switch s.AuthMode {
	case AuthModeNone:
	case AuthModeJWT:
		if len(s.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("security.jwt_secret must be at least %d characters when auth_mode is jwt", minJWTSecretLength)
		}
	default:
		return fmt.Errorf("security.auth_mode must be none or jwt, got %q", s.AuthMode)
	}
	if s.JWTSecret != "" && len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("security.jwt_secret must be at least %d characters", minJWTSecretLength)
	}
	// golang.org/x/crypto/bcrypt MinCost/MaxCost
	if s.BcryptCost < 4 || s.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost must be between 4 and 31, got %d", s.BcryptCost)
	}
	if s.ResetTokenTTL <= 0 {
		return fmt.Errorf("security.reset_token_ttl must be positive")
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs < 1 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("security.rate_limit_reqs and rate_limit_window must be positive unless rate limiting is disabled")
	}
	return nil
}

func (a *AuditConfig) validate() error {
	if !a.Enabled {
		return nil
	}
	if a.BufferSize < 1 {
		return fmt.Errorf("audit.buffer_size must be at least 1")
	}
	if a.Retention <= 0 || a.CleanupInterval <= 0 {
		return fmt.Errorf("audit.retention and audit.cleanup_interval must be positive")
	}
	return nil
}
