// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"time"

	"github.com/tomtom215/sensorhub/internal/database/query"
	"github.com/tomtom215/sensorhub/internal/models"
)

const usersSource = "users"

// UserExists reports whether email or username is already taken.
func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	return execute(ctx, s, "user_exists", usersSource, func(ctx context.Context) (bool, error) {
		var n int64
		if err := s.getRow(ctx, &n, query.CountUsersByEmailOrUsername, email, username); err != nil {
			return false, err
		}
		return n > 0, nil
	})
}

// CreateUser inserts an account. ErrDuplicate when email or username is taken.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string, createdAt time.Time) (models.User, error) {
	return execute(ctx, s, "create_user", usersSource, func(ctx context.Context) (models.User, error) {
		var row userRow
		if err := s.getRow(ctx, &row, query.InsertUser, email, username, passwordHash, createdAt.UTC()); err != nil {
			return models.User{}, err
		}
		return row.user(), nil
	})
}

// FindUserByLogin looks an account up by email or username.
func (s *Store) FindUserByLogin(ctx context.Context, identifier string) (models.User, error) {
	return s.findUser(ctx, "find_user_by_login", query.SelectUserByLogin, identifier, identifier)
}

// FindUserByEmail looks an account up by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, "find_user_by_email", query.SelectUserByEmail, email)
}

// FindUserByResetToken returns the account holding token if it has not
// expired at now.
func (s *Store) FindUserByResetToken(ctx context.Context, token string, now time.Time) (models.User, error) {
	return s.findUser(ctx, "find_user_by_reset_token", query.SelectUserByResetToken, token, now.UTC())
}

func (s *Store) findUser(ctx context.Context, op, sqlText string, args ...interface{}) (models.User, error) {
	return execute(ctx, s, op, usersSource, func(ctx context.Context) (models.User, error) {
		var row userRow
		if err := s.getRow(ctx, &row, sqlText, args...); err != nil {
			return models.User{}, err
		}
		return row.user(), nil
	})
}

// SetResetToken stores a reset token for email; ErrNotFound when no
// account has that email.
func (s *Store) SetResetToken(ctx context.Context, email, token string, expiry time.Time) error {
	_, err := execute(ctx, s, "set_reset_token", usersSource, func(ctx context.Context) (struct{}, error) {
		res, err := s.db.conn.ExecContext(ctx, s.db.conn.Rebind(query.SetResetToken), token, expiry.UTC(), email)
		if err != nil {
			return struct{}{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return struct{}{}, err
		}
		if n == 0 {
			return struct{}{}, ErrNotFound
		}
		return struct{}{}, nil
	})
	return err
}

// ConsumeResetToken sets a new password hash for the holder of a valid
// token and clears the token; ErrNotFound when the token is unknown or
// expired.
func (s *Store) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error {
	_, err := execute(ctx, s, "consume_reset_token", usersSource, func(ctx context.Context) (int64, error) {
		var id int64
		err := s.getRow(ctx, &id, query.ConsumeResetToken, passwordHash, token, now.UTC())
		return id, err
	})
	return err
}

// CountUsers returns the number of distinct accounts.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return execute(ctx, s, "count_users", usersSource, func(ctx context.Context) (int64, error) {
		var n int64
		err := s.getRow(ctx, &n, query.CountDistinctUsers)
		return n, err
	})
}
