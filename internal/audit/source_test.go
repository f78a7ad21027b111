// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package audit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSourceFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		userAgent  string
		want       Source
	}{
		{"host and port", "192.0.2.1:5123", "curl/8.0", Source{IPAddress: "192.0.2.1", UserAgent: "curl/8.0"}},
		{"ipv6", "[2001:db8::1]:443", "", Source{IPAddress: "2001:db8::1"}},
		{"bare address from RealIP", "203.0.113.9", "x", Source{IPAddress: "203.0.113.9", UserAgent: "x"}},
		{"long agent truncated", "192.0.2.1:1", strings.Repeat("a", 300), Source{IPAddress: "192.0.2.1", UserAgent: strings.Repeat("a", maxUserAgentLength)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			r.Header.Set("User-Agent", tt.userAgent)
			if diff := cmp.Diff(tt.want, SourceFromRequest(r)); diff != "" {
				t.Errorf("SourceFromRequest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCaptureSource(t *testing.T) {
	var got Source
	var ok bool
	h := CaptureSource(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = SourceFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r.RemoteAddr = "198.51.100.4:40000"
	r.Header.Set("User-Agent", "field-tablet")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if !ok {
		t.Fatal("source missing from context")
	}
	if diff := cmp.Diff(Source{IPAddress: "198.51.100.4", UserAgent: "field-tablet"}, got); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
}
