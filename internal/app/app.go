// Package app provides application lifecycle management for the catalog explorer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
	"github.com/stacklok/toolhive-catalog-explorer/internal/explorer"
)

// CatalogApp encapsulates all components needed to run the catalog explorer API server
// It provides lifecycle management and graceful shutdown capabilities
type CatalogApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start fetches the catalog in the background and serves HTTP.
// This method blocks until the HTTP server stops or encounters an error
func (app *CatalogApp) Start() error {
	go app.fetch()

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// fetch loads the collection. A failure leaves the session not fetched and
// readiness reporting unavailable.
func (app *CatalogApp) fetch() {
	session := app.components.Session
	if err := session.Fetch(app.ctx); err != nil {
		slog.Error("Failed to fetch catalog",
			"catalog", app.config.GetCatalogName(),
			"source", app.components.Provider.GetSource(),
			"error", err)
		return
	}
	slog.Info("Catalog ready", "catalog", app.config.GetCatalogName(), "session_id", session.ID())
}

// Stop gracefully stops the application with the given timeout.
// It closes the session, shuts down the HTTP server and flushes telemetry.
func (app *CatalogApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if app.cancelFunc != nil {
		app.cancelFunc()
	}
	app.components.Session.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}
	if app.components.Telemetry != nil {
		if err := app.components.Telemetry.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *CatalogApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *CatalogApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// GetSession returns the explorer session served by the app
func (app *CatalogApp) GetSession() *explorer.Session {
	return app.components.Session
}
