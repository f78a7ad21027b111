// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"net/http"

	"github.com/tomtom215/sensorhub/internal/auth"
	"github.com/tomtom215/sensorhub/internal/models"
)

const msgResetRequested = "If an account exists with this email, a reset link has been sent"

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "Error during registration")
		return
	}
	respondMessage(w, http.StatusCreated, "User registered successfully", user)
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "Server error during login")
		return
	}
	respondMessage(w, http.StatusOK, "Login successful", result)
}

// RequestPasswordReset handles POST /request-password-reset. The answer
// is the same whether or not the email is registered.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req auth.PasswordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.RequestPasswordReset(r.Context(), req); err != nil {
		writeServiceError(w, r, err, "Error processing password reset request")
		return
	}
	respondMessage(w, http.StatusOK, msgResetRequested, nil)
}

// ResetPassword handles POST /reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), req); err != nil {
		writeServiceError(w, r, err, "Error resetting password")
		return
	}
	respondMessage(w, http.StatusOK, "Password updated successfully", nil)
}

// ValidateResetToken handles GET and POST /validate-reset-token. The token
// is read from the query string, or from a JSON body on POST.
func (h *Handler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Method == http.MethodPost {
		var body struct {
			Token string `json:"token"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		token = body.Token
	}

	valid, err := h.accounts.ValidateResetToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err, "Error validating token")
		return
	}
	msg := "Token is valid"
	if !valid {
		msg = "Invalid or expired token"
	}
	respondMessage(w, http.StatusOK, msg, models.TokenValidity{Valid: valid})
}

// CountUsers handles GET /users/count.
func (h *Handler) CountUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.accounts.CountUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Error counting users")
		return
	}
	respondData(w, http.StatusOK, models.CountResult{Count: n})
}
