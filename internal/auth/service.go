// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/database"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/validation"
)

var (
	// ErrUserExists means the email or username is already registered.
	ErrUserExists = errors.New("user already exists with this email or username")

	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidResetToken means the token is unknown, used or expired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// InputError is a request that is missing required fields.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// UserStore is the account storage the service needs. *database.Store
// implements it.
type UserStore interface {
	UserExists(ctx context.Context, email, username string) (bool, error)
	CreateUser(ctx context.Context, email, username, passwordHash string, createdAt time.Time) (models.User, error)
	FindUserByLogin(ctx context.Context, identifier string) (models.User, error)
	SetResetToken(ctx context.Context, email, token string, expiry time.Time) error
	FindUserByResetToken(ctx context.Context, token string, now time.Time) (models.User, error)
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error
	CountUsers(ctx context.Context) (int64, error)
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /login. EmailOrUsername is matched
// against both columns; email and username are accepted as aliases.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"max=255"`
	Email           string `json:"email" validate:"max=255"`
	Username        string `json:"username" validate:"max=128"`
	Password        string `json:"password" validate:"required"`
}

// Identifier returns the first login name that was sent.
func (r LoginRequest) Identifier() string {
	for _, v := range []string{r.EmailOrUsername, r.Email, r.Username} {
		if v != "" {
			return v
		}
	}
	return ""
}

// PasswordResetRequest is the body of POST /request-password-reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordRequest is the body of POST /reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// Auditor receives account events. Implementations must not block.
type Auditor interface {
	Record(ctx context.Context, ev models.AuditEvent)
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, models.AuditEvent) {}

// Service implements account operations.
type Service struct {
	store    UserStore
	jwt      *JWTManager
	audit    Auditor
	cost     int
	resetTTL time.Duration
	now      func() time.Time
}

// NewService builds the account service. jwtManager may be nil, in which
// case Login returns no token.
func NewService(store UserStore, jwtManager *JWTManager, cfg *config.SecurityConfig) *Service {
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		store:    store,
		jwt:      jwtManager,
		audit:    nopAuditor{},
		cost:     cfg.BcryptCost,
		resetTTL: ttl,
		now:      time.Now,
	}
}

// SetAuditor routes account events to a. nil disables auditing.
func (s *Service) SetAuditor(a Auditor) {
	if a == nil {
		a = nopAuditor{}
	}
	s.audit = a
}

func (s *Service) record(ctx context.Context, typ, outcome, actor, target, description string) {
	s.audit.Record(ctx, models.AuditEvent{
		Type:        typ,
		Outcome:     outcome,
		Actor:       actor,
		Target:      target,
		Description: description,
	})
}

// JWT returns the token manager, or nil when tokens are disabled.
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// Register creates an account. No row is written when the email or
// username is taken.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (models.PublicUser, error) {
	if validation.ValidateStruct(&req) != nil {
		return models.PublicUser{}, &InputError{Message: "Email, username, and password are required"}
	}
	if err := checkPasswordLength(req.Password); err != nil {
		return models.PublicUser{}, err
	}

	exists, err := s.store.UserExists(ctx, req.Email, req.Username)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		metrics.RecordAuthAttempt("register", "conflict")
		s.record(ctx, models.AuditAccountRegister, models.AuditFailure, req.Username, "", "email or username taken")
		return models.PublicUser{}, ErrUserExists
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return models.PublicUser{}, err
	}

	u, err := s.store.CreateUser(ctx, req.Email, req.Username, hash, s.now())
	if errors.Is(err, database.ErrDuplicate) {
		metrics.RecordAuthAttempt("register", "conflict")
		s.record(ctx, models.AuditAccountRegister, models.AuditFailure, req.Username, "", "email or username taken")
		return models.PublicUser{}, ErrUserExists
	}
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordAuthAttempt("register", "success")
	s.record(ctx, models.AuditAccountRegister, models.AuditSuccess, u.Username, strconv.FormatInt(u.ID, 10), "")
	logging.Ctx(ctx).Info().Int64("user_id", u.ID).Msg("User registered")
	return u.Public(), nil
}

// Login checks credentials and, when a JWT manager is configured, issues
// a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (models.LoginResult, error) {
	if validation.ValidateStruct(&req) != nil || req.Identifier() == "" {
		return models.LoginResult{}, &InputError{Message: "Email/Username and password are required"}
	}

	u, err := s.store.FindUserByLogin(ctx, req.Identifier())
	if errors.Is(err, database.ErrNotFound) {
		metrics.RecordAuthAttempt("login", "failure")
		s.record(ctx, models.AuditAccountLogin, models.AuditFailure, req.Identifier(), "", "unknown account")
		return models.LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, req.Password) {
		metrics.RecordAuthAttempt("login", "failure")
		s.record(ctx, models.AuditAccountLogin, models.AuditFailure, req.Identifier(), strconv.FormatInt(u.ID, 10), "wrong password")
		return models.LoginResult{}, ErrInvalidCredentials
	}

	result := models.LoginResult{User: u.Public()}
	if s.jwt != nil {
		token, expires, err := s.jwt.GenerateToken(u)
		if err != nil {
			return models.LoginResult{}, err
		}
		result.Token = token
		result.ExpiresAt = &expires
	}

	metrics.RecordAuthAttempt("login", "success")
	s.record(ctx, models.AuditAccountLogin, models.AuditSuccess, req.Identifier(), strconv.FormatInt(u.ID, 10), "")
	return result, nil
}

// RequestPasswordReset stores a fresh reset token for the email if it is
// registered. The outcome is not reported to the caller.
func (s *Service) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	if validation.ValidateStruct(&req) != nil {
		return &InputError{Message: "Email is required"}
	}

	token, err := NewResetToken()
	if err != nil {
		return err
	}

	err = s.store.SetResetToken(ctx, req.Email, token, s.now().Add(s.resetTTL))
	switch {
	case errors.Is(err, database.ErrNotFound):
		metrics.RecordAuthAttempt("reset_request", "unknown_email")
		s.record(ctx, models.AuditPasswordResetRequest, models.AuditFailure, req.Email, "", "unknown email")
		return nil
	case err != nil:
		return fmt.Errorf("store reset token: %w", err)
	}

	metrics.RecordAuthAttempt("reset_request", "success")
	s.record(ctx, models.AuditPasswordResetRequest, models.AuditSuccess, req.Email, "", "")
	logging.Ctx(ctx).Debug().
		Str("email", req.Email).
		Str("reset_token", token).
		Msg("Password reset token issued")
	return nil
}

// ResetPassword sets a new password for the holder of a valid token and
// invalidates the token.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if validation.ValidateStruct(&req) != nil {
		return &InputError{Message: "Token and new password are required"}
	}
	if err := checkPasswordLength(req.NewPassword); err != nil {
		return err
	}

	hash, err := HashPassword(req.NewPassword, s.cost)
	if err != nil {
		return err
	}

	err = s.store.ConsumeResetToken(ctx, req.Token, hash, s.now())
	if errors.Is(err, database.ErrNotFound) {
		metrics.RecordAuthAttempt("reset", "invalid_token")
		s.record(ctx, models.AuditPasswordReset, models.AuditFailure, "", "", "invalid or expired token")
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	metrics.RecordAuthAttempt("reset", "success")
	s.record(ctx, models.AuditPasswordReset, models.AuditSuccess, "", "", "")
	return nil
}

// ValidateResetToken reports whether token is known and unexpired.
func (s *Service) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, &InputError{Message: "Token is required"}
	}
	_, err := s.store.FindUserByResetToken(ctx, token, s.now())
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find reset token: %w", err)
	}
	return true, nil
}

// CountUsers returns the number of registered accounts.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
