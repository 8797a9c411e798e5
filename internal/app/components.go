package app

import (
	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/explorer"
	"github.com/stacklok/toolhive-catalog-explorer/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Provider supplies the catalog collection
	Provider catalog.Provider

	// Session holds the explorer state served over HTTP
	Session *explorer.Session

	// Telemetry owns the tracer and meter providers (optional)
	Telemetry *telemetry.Telemetry
}
