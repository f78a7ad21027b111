// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/sensorhub/internal/auth"
	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/database"
	"github.com/tomtom215/sensorhub/internal/readings"
	ws "github.com/tomtom215/sensorhub/internal/websocket"
)

const testJWTSecret = "api-test-secret-that-is-long-enough-123456"

type testServer struct {
	handler http.Handler
	db      *database.DB
	store   *database.Store
	hub     *ws.Hub // wired but not serving until a test runs it
}

type serverOption func(*config.Config)

func withAuthMode(mode string) serverOption {
	return func(c *config.Config) { c.Security.AuthMode = mode }
}

func withRateLimit(n int) serverOption {
	return func(c *config.Config) {
		c.Security.RateLimitDisabled = false
		c.Security.RateLimitReqs = n
		c.Security.RateLimitWindow = time.Hour
	}
}

func withBreakerThreshold(n uint32) serverOption {
	return func(c *config.Config) { c.Breaker.FailureThreshold = n }
}

// newTestServer wires the full router over a private in-memory SQLite
// database.
func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         config.DriverSQLite,
			DSN:            "file:api_" + name + "?mode=memory&cache=shared",
			MaxOpenConns:   4,
			MaxIdleConns:   4,
			ConnectTimeout: 5 * time.Second,
		},
		Security: config.SecurityConfig{
			AuthMode:          config.AuthModeNone,
			JWTSecret:         testJWTSecret,
			JWTTTL:            time.Hour,
			BcryptCost:        bcrypt.MinCost,
			ResetTokenTTL:     time.Hour,
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
		Breaker: config.BreakerConfig{FailureThreshold: 5, Timeout: time.Hour, MaxRequests: 1},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	store := database.NewStore(db, cfg.Breaker)
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	hub := ws.NewHub()
	readingsSvc := readings.NewService(store)
	readingsSvc.SetPublisher(hub)

	handler := NewHandler(
		readingsSvc,
		auth.NewService(store, jwtManager, &cfg.Security),
		store,
	)
	handler.SetLiveFeed(hub, cfg.Security.CORSOrigins)
	router := NewRouter(handler,
		NewChiMiddleware(ChiMiddlewareConfigFrom(&cfg.Security)),
		auth.NewMiddleware(jwtManager, cfg.Security.AuthMode))

	return &testServer{handler: router.Setup(), db: db, store: store, hub: hub}
}

func (s *testServer) exec(t *testing.T, sqlText string, args ...interface{}) {
	t.Helper()
	conn := s.db.Conn()
	if _, err := conn.ExecContext(context.Background(), conn.Rebind(sqlText), args...); err != nil {
		t.Fatalf("exec %q: %v", sqlText, err)
	}
}

func (s *testServer) seedSensor(t *testing.T, sensorID, farmID string, value float64, at string) {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		t.Fatalf("parse %q: %v", at, err)
	}
	s.exec(t, `INSERT INTO sensor_data (sensor_id, farm_id, name, value, "timestamp") VALUES (?, ?, ?, ?, ?)`,
		sensorID, farmID, "sensor", value, ts.UTC())
}

func (s *testServer) seedGnss(t *testing.T, table, gnssID, sensorID string, value float64, at string) {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		t.Fatalf("parse %q: %v", at, err)
	}
	s.exec(t, `INSERT INTO `+table+` (gnss_id, sensor_id, value, "timestamp") VALUES (?, ?, ?, ?)`,
		gnssID, sensorID, value, ts.UTC())
}

// envelope is the decoded response body.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type response struct {
	code int
	body string
	env  envelope
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}, header ...string) response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	res := response{code: rec.Code, body: rec.Body.String()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &res.env); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, target, res.body, err)
		}
	}
	return res
}

func decodeData(t *testing.T, res response, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(res.env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", res.env.Data, err)
	}
}
