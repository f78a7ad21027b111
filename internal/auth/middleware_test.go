// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/models"
)

func TestMiddleware_Authenticate(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	token, _, err := m.GenerateToken(models.User{ID: 7, Username: "eve"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		mode       string
		header     string
		wantStatus int
		wantClaims bool
	}{
		{"none mode without header", config.AuthModeNone, "", http.StatusNoContent, false},
		{"jwt mode without header", config.AuthModeJWT, "", http.StatusUnauthorized, false},
		{"jwt mode basic scheme", config.AuthModeJWT, "Basic abc", http.StatusUnauthorized, false},
		{"jwt mode bad token", config.AuthModeJWT, "Bearer nope", http.StatusUnauthorized, false},
		{"jwt mode valid token", config.AuthModeJWT, "Bearer " + token, http.StatusNoContent, true},
		{"jwt mode lowercase scheme", config.AuthModeJWT, "bearer " + token, http.StatusNoContent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/sensor_data", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			NewMiddleware(m, tt.mode).Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				body := rec.Body.String()
				if !strings.Contains(body, `"success":false`) || !strings.Contains(body, "Authentication required") {
					t.Errorf("unexpected body %s", body)
				}
			}
			if (seen != nil) != tt.wantClaims {
				t.Errorf("claims present = %v, want %v", seen != nil, tt.wantClaims)
			}
			if tt.wantClaims && seen.UserID() != 7 {
				t.Errorf("UserID = %d, want 7", seen.UserID())
			}
		})
	}
}
