package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"k8s.io/utils/clock"

	"github.com/stacklok/toolhive-catalog-explorer/internal/api"
	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
	"github.com/stacklok/toolhive-catalog-explorer/internal/explorer"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sources"
	"github.com/stacklok/toolhive-catalog-explorer/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// CatalogAppOptions is a function that configures the catalog app builder
type CatalogAppOptions func(*catalogAppConfig) error

// catalogAppConfig collects the builder inputs. Component overrides are
// primarily for testing.
type catalogAppConfig struct {
	config *config.Config

	providerFactory sources.ProviderFactory
	provider        catalog.Provider
	clock           clock.WithDelayedExecution
	telemetry       *telemetry.Telemetry

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...CatalogAppOptions) (*catalogAppConfig, error) {
	cfg := &catalogAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewCatalogApp creates the app serving one explorer session over HTTP
func NewCatalogApp(ctx context.Context, opts ...CatalogAppOptions) (*CatalogApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.telemetry == nil {
		cfg.telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.config.Telemetry))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			_ = cfg.telemetry.Shutdown(context.WithoutCancel(ctx))
		}
	}()

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider: %w", err)
	}

	var sessionOpts []explorer.Option
	if cfg.clock != nil {
		sessionOpts = append(sessionOpts, explorer.WithClock(cfg.clock))
	}
	session, err := NewSession(cfg.config, provider, cfg.telemetry, sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create explorer session: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, session)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false
	return &CatalogApp{
		config: cfg.config,
		components: &AppComponents{
			Provider:  provider,
			Session:   session,
			Telemetry: cfg.telemetry,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// NewSession creates an explorer session configured from cfg. A nil
// telemetry leaves the session uninstrumented.
func NewSession(
	cfg *config.Config,
	provider catalog.Provider,
	tel *telemetry.Telemetry,
	opts ...explorer.Option,
) (*explorer.Session, error) {
	sessionOpts := []explorer.Option{
		explorer.WithCatalogName(cfg.GetCatalogName()),
		explorer.WithExplorerConfig(cfg.GetExplorer()),
		explorer.WithSourceFilter(cfg.Filter),
	}

	if tel != nil {
		metrics, err := telemetry.NewCatalogMetrics(tel.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog metrics: %w", err)
		}
		sessionOpts = append(sessionOpts,
			explorer.WithMetrics(metrics),
			explorer.WithTracer(tel.Tracer(explorer.TracerName)),
		)
	}

	return explorer.New(provider, append(sessionOpts, opts...)...)
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) CatalogAppOptions {
	return func(cfg *catalogAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) CatalogAppOptions {
	return func(cfg *catalogAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) CatalogAppOptions {
	return func(cfg *catalogAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithProviderFactory allows injecting a custom provider factory (for testing)
func WithProviderFactory(f sources.ProviderFactory) CatalogAppOptions {
	return func(cfg *catalogAppConfig) error {
		cfg.providerFactory = f
		return nil
	}
}

// WithProvider bypasses the provider factory (for testing)
func WithProvider(p catalog.Provider) CatalogAppOptions {
	return func(cfg *catalogAppConfig) error {
		cfg.provider = p
		return nil
	}
}

// WithClock sets the clock driving the session debouncers (for testing)
func WithClock(clk clock.WithDelayedExecution) CatalogAppOptions {
	return func(cfg *catalogAppConfig) error {
		if clk == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		cfg.clock = clk
		return nil
	}
}

// WithTelemetry sets already initialized telemetry providers
func WithTelemetry(t *telemetry.Telemetry) CatalogAppOptions {
	return func(cfg *catalogAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// buildProvider returns the injected provider or creates one from the source configuration
func buildProvider(b *catalogAppConfig) (catalog.Provider, error) {
	if b.provider != nil {
		return b.provider, nil
	}
	if b.providerFactory == nil {
		b.providerFactory = sources.NewProviderFactory()
	}

	provider, err := b.providerFactory.CreateProvider(&b.config.Source)
	if err != nil {
		return nil, err
	}
	slog.Info("Created catalog provider", "source", provider.GetSource())
	return provider, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *catalogAppConfig, exp *explorer.Session) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// telemetry wraps the whole chain so that every request is observed
	var telemetryMiddlewares []func(http.Handler) http.Handler
	if b.telemetry != nil {
		httpMetrics, err := telemetry.NewHTTPMetrics(b.telemetry.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		telemetryMiddlewares = append(telemetryMiddlewares,
			telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
			httpMetrics.Middleware,
		)
	}
	middlewares := append(telemetryMiddlewares, b.middlewares...)

	router := api.NewServer(exp, api.WithMiddlewares(middlewares...))

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
