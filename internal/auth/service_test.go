// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/database"
	"github.com/tomtom215/sensorhub/internal/models"
)

// memoryUserStore is an in-memory UserStore.
type memoryUserStore struct {
	users  []models.User
	writes int
	err    error
}

func (m *memoryUserStore) UserExists(_ context.Context, email, username string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUserStore) CreateUser(_ context.Context, email, username, hash string, at time.Time) (models.User, error) {
	m.writes++
	u := models.User{ID: int64(len(m.users) + 1), Email: email, Username: username, PasswordHash: hash, CreatedAt: at}
	m.users = append(m.users, u)
	return u, nil
}

func (m *memoryUserStore) FindUserByLogin(_ context.Context, id string) (models.User, error) {
	for _, u := range m.users {
		if u.Email == id || u.Username == id {
			return u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (m *memoryUserStore) SetResetToken(_ context.Context, email, token string, expiry time.Time) error {
	for i := range m.users {
		if m.users[i].Email == email {
			m.users[i].ResetToken, m.users[i].ResetTokenExpiry = &token, &expiry
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memoryUserStore) find(token string, now time.Time) int {
	for i, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetTokenExpiry.After(now) {
			return i
		}
	}
	return -1
}

func (m *memoryUserStore) FindUserByResetToken(_ context.Context, token string, now time.Time) (models.User, error) {
	if i := m.find(token, now); i >= 0 {
		return m.users[i], nil
	}
	return models.User{}, database.ErrNotFound
}

func (m *memoryUserStore) ConsumeResetToken(_ context.Context, token, hash string, now time.Time) error {
	i := m.find(token, now)
	if i < 0 {
		return database.ErrNotFound
	}
	m.users[i].PasswordHash, m.users[i].ResetToken, m.users[i].ResetTokenExpiry = hash, nil, nil
	return nil
}

func (m *memoryUserStore) CountUsers(context.Context) (int64, error) {
	return int64(len(m.users)), m.err
}

func newTestService(t *testing.T, withJWT bool) (*Service, *memoryUserStore) {
	t.Helper()
	store := &memoryUserStore{}
	cfg := &config.SecurityConfig{BcryptCost: bcrypt.MinCost, ResetTokenTTL: time.Hour}
	var m *JWTManager
	if withJWT {
		m = newTestJWTManager(t, time.Hour)
	}
	return NewService(store, m, cfg), store
}

func TestRegister(t *testing.T) {
	svc, store := newTestService(t, false)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Email: "ann@example.com", Username: "ann", Password: "pw"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.ID != 1 || u.Username != "ann" {
		t.Errorf("unexpected user %+v", u)
	}
	if store.users[0].PasswordHash == "pw" || !CheckPassword(store.users[0].PasswordHash, "pw") {
		t.Error("password not stored as bcrypt hash")
	}

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"duplicate email", RegisterRequest{Email: "ann@example.com", Username: "other", Password: "pw"}, ErrUserExists},
		{"duplicate username", RegisterRequest{Email: "new@example.com", Username: "ann", Password: "pw"}, ErrUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	var inErr *InputError
	if _, err := svc.Register(ctx, RegisterRequest{Email: "x@example.com"}); !errors.As(err, &inErr) {
		t.Errorf("Register(missing) error = %v, want *InputError", err)
	}
	if store.writes != 1 {
		t.Errorf("writes = %d, want 1", store.writes)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Email: "bob@example.com", Username: "bob", Password: "pw"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for _, req := range []LoginRequest{
		{EmailOrUsername: "bob", Password: "pw"},
		{EmailOrUsername: "bob@example.com", Password: "pw"},
		{Email: "bob@example.com", Password: "pw"},
	} {
		res, err := svc.Login(ctx, req)
		if err != nil {
			t.Fatalf("Login(%+v) error = %v", req, err)
		}
		if res.User.Username != "bob" || res.Token == "" || res.ExpiresAt == nil {
			t.Errorf("Login(%+v) = %+v", req, res)
		}
		if _, err := svc.JWT().ValidateToken(res.Token); err != nil {
			t.Errorf("issued token invalid: %v", err)
		}
	}

	for _, req := range []LoginRequest{
		{EmailOrUsername: "bob", Password: "nope"},
		{EmailOrUsername: "nobody", Password: "pw"},
	} {
		if _, err := svc.Login(ctx, req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%+v) error = %v, want ErrInvalidCredentials", req, err)
		}
	}

	var inErr *InputError
	if _, err := svc.Login(ctx, LoginRequest{Password: "pw"}); !errors.As(err, &inErr) {
		t.Errorf("Login(no identifier) error = %v, want *InputError", err)
	}
}

func TestLogin_NoTokenWithoutJWT(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Email: "c@example.com", Username: "c", Password: "pw"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	res, err := svc.Login(ctx, LoginRequest{EmailOrUsername: "c", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Token != "" || res.ExpiresAt != nil {
		t.Errorf("token issued without JWT manager: %+v", res)
	}
}

func TestPasswordByteLimit(t *testing.T) {
	svc, store := newTestService(t, false)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Email: "e@example.com", Username: "e", Password: "old"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "e@example.com"}); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	token := *store.users[0].ResetToken

	// 40 characters, 80 bytes.
	tooLong := strings.Repeat("é", 40)
	atLimit := strings.Repeat("é", MaxPasswordBytes/2)

	var inErr *InputError
	_, err := svc.Register(ctx, RegisterRequest{Email: "f@example.com", Username: "f", Password: tooLong})
	if !errors.As(err, &inErr) {
		t.Fatalf("Register(80 bytes) error = %v, want *InputError", err)
	}
	if want := "Password must be at most 72 bytes"; inErr.Message != want {
		t.Errorf("message = %q, want %q", inErr.Message, want)
	}
	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: tooLong}); !errors.As(err, &inErr) {
		t.Errorf("ResetPassword(80 bytes) error = %v, want *InputError", err)
	}
	if store.writes != 1 {
		t.Errorf("writes = %d, want 1", store.writes)
	}

	if _, err := svc.Register(ctx, RegisterRequest{Email: "g@example.com", Username: "g", Password: atLimit}); err != nil {
		t.Errorf("Register(72 bytes) error = %v", err)
	}
	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: atLimit}); err != nil {
		t.Errorf("ResetPassword(72 bytes) error = %v", err)
	}
	if !CheckPassword(store.users[0].PasswordHash, atLimit) {
		t.Error("password not updated after rejected attempt")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, store := newTestService(t, false)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(ctx, RegisterRequest{Email: "d@example.com", Username: "d", Password: "old"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown emails get the same answer.
	if err := svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "ghost@example.com"}); err != nil {
		t.Errorf("RequestPasswordReset(unknown) error = %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "d@example.com"}); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	token := *store.users[0].ResetToken
	if !store.users[0].ResetTokenExpiry.Equal(now.Add(time.Hour)) {
		t.Errorf("expiry = %v, want %v", store.users[0].ResetTokenExpiry, now.Add(time.Hour))
	}

	ok, err := svc.ValidateResetToken(ctx, token)
	if err != nil || !ok {
		t.Errorf("ValidateResetToken() = %v, %v; want true", ok, err)
	}
	if ok, _ := svc.ValidateResetToken(ctx, "bogus"); ok {
		t.Error("ValidateResetToken(bogus) = true")
	}

	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "new"}); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if !CheckPassword(store.users[0].PasswordHash, "new") {
		t.Error("password not updated")
	}
	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "again"}); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("reused token error = %v, want ErrInvalidResetToken", err)
	}

	if err := svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "d@example.com"}); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	token = *store.users[0].ResetToken
	now = now.Add(2 * time.Hour)
	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "late"}); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expired token error = %v, want ErrInvalidResetToken", err)
	}
}

func TestCountUsers(t *testing.T) {
	svc, store := newTestService(t, false)
	ctx := context.Background()
	for _, name := range []string{"a", "b"} {
		if _, err := svc.Register(ctx, RegisterRequest{Email: name + "@example.com", Username: name, Password: "pw"}); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
	n, err := svc.CountUsers(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountUsers() = %d, %v; want 2", n, err)
	}

	store.err = database.ErrUnavailable
	if _, err := svc.CountUsers(ctx); !errors.Is(err, database.ErrUnavailable) {
		t.Errorf("CountUsers() error = %v, want ErrUnavailable", err)
	}
}

type recordingAuditor struct {
	events []models.AuditEvent
}

func (r *recordingAuditor) Record(_ context.Context, ev models.AuditEvent) {
	r.events = append(r.events, ev)
}

func TestAccountEventsAreAudited(t *testing.T) {
	svc, _ := newTestService(t, false)
	rec := &recordingAuditor{}
	svc.SetAuditor(rec)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Email: "e@example.com", Username: "eve", Password: "pw"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, _ = svc.Register(ctx, RegisterRequest{Email: "e@example.com", Username: "eve2", Password: "pw"})
	_, _ = svc.Login(ctx, LoginRequest{EmailOrUsername: "eve", Password: "wrong"})
	_, _ = svc.Login(ctx, LoginRequest{EmailOrUsername: "eve", Password: "pw"})
	_ = svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "nobody@example.com"})
	_ = svc.ResetPassword(ctx, ResetPasswordRequest{Token: "bogus", NewPassword: "x"})

	type summary struct{ Type, Outcome, Actor string }
	var got []summary
	for _, ev := range rec.events {
		got = append(got, summary{ev.Type, ev.Outcome, ev.Actor})
	}
	want := []summary{
		{models.AuditAccountRegister, models.AuditSuccess, "eve"},
		{models.AuditAccountRegister, models.AuditFailure, "eve2"},
		{models.AuditAccountLogin, models.AuditFailure, "eve"},
		{models.AuditAccountLogin, models.AuditSuccess, "eve"},
		{models.AuditPasswordResetRequest, models.AuditFailure, "nobody@example.com"},
		{models.AuditPasswordReset, models.AuditFailure, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("audit events mismatch (-want +got):\n%s", diff)
	}
	if rec.events[0].Target != "1" {
		t.Errorf("register target = %q, want user id 1", rec.events[0].Target)
	}

	// nil restores the no-op auditor.
	svc.SetAuditor(nil)
	_, _ = svc.Login(ctx, LoginRequest{EmailOrUsername: "eve", Password: "pw"})
	if len(rec.events) != len(want) {
		t.Errorf("events recorded after SetAuditor(nil): %d", len(rec.events)-len(want))
	}
}
