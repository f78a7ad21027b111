// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package auth manages user accounts and optional bearer-token access.

Key Components:

  - Service: registration, login, password reset and user counting on top
    of a UserStore
  - JWTManager: HS256 token issue and validation
  - Middleware: enforces "Authorization: Bearer <token>" when
    security.auth_mode is "jwt"; a no-op in "none" mode

Passwords are stored as bcrypt hashes. Reset tokens are 32 random bytes,
hex encoded, and expire after security.reset_token_ttl (1h by default).
There is no mail transport: the reset token is written to the debug log.

Requesting a reset never reveals whether an email is registered; the same
answer is returned either way.
*/
package auth
