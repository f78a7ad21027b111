// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateUser_Duplicate(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		now := ts("2024-01-01T00:00:00Z")

		u, err := s.CreateUser(ctx, "ann@example.com", "ann", "hash", now)
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if u.ID == 0 || u.Email != "ann@example.com" || u.Username != "ann" {
			t.Errorf("unexpected user: %+v", u)
		}

		exists, err := s.UserExists(ctx, "other@example.com", "ann")
		if err != nil {
			t.Fatalf("UserExists: %v", err)
		}
		if !exists {
			t.Error("UserExists should match on username")
		}

		_, err = s.CreateUser(ctx, "ann@example.com", "ann2", "hash", now)
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
		}

		n, err := s.CountUsers(ctx)
		if err != nil {
			t.Fatalf("CountUsers: %v", err)
		}
		if n != 1 {
			t.Errorf("CountUsers = %d, want 1", n)
		}
	})
}

func TestFindUserByLogin(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		if _, err := s.CreateUser(ctx, "bob@example.com", "bob", "hash", time.Now()); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		for _, login := range []string{"bob", "bob@example.com"} {
			u, err := s.FindUserByLogin(ctx, login)
			if err != nil {
				t.Fatalf("FindUserByLogin(%q): %v", login, err)
			}
			if u.Username != "bob" || u.PasswordHash != "hash" {
				t.Errorf("FindUserByLogin(%q) = %+v", login, u)
			}
		}

		if _, err := s.FindUserByLogin(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindUserByLogin(unknown) error = %v, want ErrNotFound", err)
		}
	})
}

func TestResetTokenLifecycle(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		now := ts("2024-01-01T12:00:00Z")
		if _, err := s.CreateUser(ctx, "cy@example.com", "cy", "old", now); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		if err := s.SetResetToken(ctx, "missing@example.com", "tok", now.Add(time.Hour)); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetResetToken(unknown) error = %v, want ErrNotFound", err)
		}
		if err := s.SetResetToken(ctx, "cy@example.com", "tok", now.Add(time.Hour)); err != nil {
			t.Fatalf("SetResetToken: %v", err)
		}

		u, err := s.FindUserByResetToken(ctx, "tok", now)
		if err != nil {
			t.Fatalf("FindUserByResetToken: %v", err)
		}
		if u.ResetToken == nil || *u.ResetToken != "tok" || u.ResetTokenExpiry == nil {
			t.Errorf("reset token not stored: %+v", u)
		}

		if _, err := s.FindUserByResetToken(ctx, "tok", now.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
			t.Errorf("expired token error = %v, want ErrNotFound", err)
		}
		if err := s.ConsumeResetToken(ctx, "tok", "new", now.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
			t.Errorf("ConsumeResetToken(expired) error = %v, want ErrNotFound", err)
		}

		if err := s.ConsumeResetToken(ctx, "tok", "new", now); err != nil {
			t.Fatalf("ConsumeResetToken: %v", err)
		}
		u, err = s.FindUserByEmail(ctx, "cy@example.com")
		if err != nil {
			t.Fatalf("FindUserByEmail: %v", err)
		}
		if u.PasswordHash != "new" || u.ResetToken != nil || u.ResetTokenExpiry != nil {
			t.Errorf("token not consumed: %+v", u)
		}

		if err := s.ConsumeResetToken(ctx, "tok", "again", now); !errors.Is(err, ErrNotFound) {
			t.Errorf("reused token error = %v, want ErrNotFound", err)
		}
	})
}
