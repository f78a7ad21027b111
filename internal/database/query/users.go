// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package query

// User account statements. Expiry comparisons take "now" as an argument so
// every dialect evaluates them against the same clock.
const (
	userColumns = "id, email, username, password_hash, reset_token, reset_token_expiry, created_at"

	CountUsersByEmailOrUsername = `SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`

	InsertUser = `INSERT INTO users (email, username, password_hash, created_at) VALUES (?, ?, ?, ?) ` +
		`RETURNING ` + userColumns

	// SelectUserByLogin matches the login identifier against email or username.
	SelectUserByLogin = `SELECT ` + userColumns + ` FROM users WHERE email = ? OR username = ? ORDER BY id ASC LIMIT 1`

	SelectUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	SetResetToken = `UPDATE users SET reset_token = ?, reset_token_expiry = ? WHERE email = ?`

	SelectUserByResetToken = `SELECT ` + userColumns + ` FROM users WHERE reset_token = ? AND reset_token_expiry > ?`

	// ConsumeResetToken sets the new hash and clears the token in one statement.
	ConsumeResetToken = `UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL ` +
		`WHERE reset_token = ? AND reset_token_expiry > ? RETURNING id`

	CountDistinctUsers = `SELECT COUNT(DISTINCT id) FROM users`
)
