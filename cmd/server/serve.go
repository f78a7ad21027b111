// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sensorhub/internal/api"
	"github.com/tomtom215/sensorhub/internal/audit"
	"github.com/tomtom215/sensorhub/internal/auth"
	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/database"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/readings"
	"github.com/tomtom215/sensorhub/internal/supervisor"
	"github.com/tomtom215/sensorhub/internal/supervisor/services"
	ws "github.com/tomtom215/sensorhub/internal/websocket"
)

const datastoreCheckInterval = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

// app is everything serve builds before the supervisor starts.
type app struct {
	db     *database.DB
	store  *database.Store
	audit  *audit.Logger // nil when the audit trail is disabled
	hub    *ws.Hub
	server *http.Server
}

// buildApp opens the datastore and wires the HTTP stack on top of it. The
// caller closes app.db.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	store := database.NewStore(db, cfg.Breaker)

	var jwtManager *auth.JWTManager
	if cfg.Security.JWTSecret != "" {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("jwt: %w", err)
		}
	}

	switch cfg.Security.AuthMode {
	case config.AuthModeJWT:
		logging.Info().Msg("JWT authentication enabled for readings routes")
	default:
		logging.Warn().Msg("Authentication disabled (AUTH_MODE=none): readings routes are public")
	}
	if cfg.Security.AuthMode == config.AuthModeJWT && containsWildcard(cfg.Security.CORSOrigins) {
		logging.Warn().Msg("CORS allows any origin while authentication is enabled")
	}

	hub := ws.NewHub()
	readingsSvc := readings.NewService(store)
	readingsSvc.SetPublisher(hub)
	authSvc := auth.NewService(store, jwtManager, &cfg.Security)

	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		auditLogger = audit.NewLogger(store, cfg.Audit)
		readingsSvc.SetAuditor(auditLogger)
		authSvc.SetAuditor(auditLogger)
	}

	handler := api.NewHandler(readingsSvc, authSvc, store)
	handler.SetLiveFeed(hub, cfg.Security.CORSOrigins)
	router := api.NewRouter(handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
		auth.NewMiddleware(jwtManager, cfg.Security.AuthMode),
	)

	return &app{
		db:    db,
		store: store,
		audit: auditLogger,
		hub:   hub,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router.Setup(),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}, nil
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// runServe blocks until ctx is canceled and the supervisor tree has stopped.
func runServe(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("driver", cfg.Database.Driver).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting sensorhub")

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing datastore")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("supervisor: %w", err)
	}

	tree.AddDataService(services.NewDatastoreMonitor(a.store, datastoreCheckInterval))
	if a.audit != nil {
		tree.AddDataService(a.audit)
	}
	tree.AddAPIService(a.hub)
	tree.AddAPIService(services.NewHTTPServerService(a.server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", a.server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown requested, waiting for supervisor to finish")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		// The tree only stops on its own when something is badly wrong.
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = fmt.Errorf("supervisor tree stopped: %w", err)
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Stopped")
	return serveErr
}
