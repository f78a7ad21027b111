// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package audit

import (
	"context"
	"net"
	"net/http"
)

// Source is where a request came from.
type Source struct {
	IPAddress string
	UserAgent string
}

type contextKey string

const sourceKey contextKey = "audit_source"

// maxUserAgentLength bounds what is persisted per event.
const maxUserAgentLength = 256

// SourceFromRequest reads the client address and user agent. Run it after
// chi's RealIP so RemoteAddr is already the client.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ua := r.UserAgent()
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}
	return Source{IPAddress: ip, UserAgent: ua}
}

// ContextWithSource stores src for Logger.Record.
func ContextWithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, sourceKey, src)
}

// SourceFromContext returns the Source stored by CaptureSource.
func SourceFromContext(ctx context.Context) (Source, bool) {
	src, ok := ctx.Value(sourceKey).(Source)
	return src, ok
}

// CaptureSource is HTTP middleware that stores the request's Source in its
// context.
func CaptureSource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ContextWithSource(r.Context(), SourceFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
