// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the chat relay.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"chatrelay/config"
	"chatrelay/internal/httpclient"
	"chatrelay/internal/observability"
	"chatrelay/internal/providers"
	"chatrelay/internal/server"
)

// App represents the main application with all its dependencies.
type App struct {
	config     *config.Config
	httpClient httpclient.ClientConfig
	server     *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
	// drained is closed once Shutdown has finished waiting for in-flight requests
	drained chan struct{}
}

// Config holds the configuration options for creating an App.
type Config struct {
	// AppConfig is the loaded application configuration.
	AppConfig *config.Config

	// Factory provides the ProviderFactory used to construct adapters.
	Factory *providers.ProviderFactory

	// Registerer receives the relay's metrics when enabled.
	// Defaults to prometheus.DefaultRegisterer, which /metrics serves.
	Registerer prometheus.Registerer
}

// New creates a new App with all dependencies initialized.
func New(cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("factory is required")
	}

	appCfg := cfg.AppConfig
	bodySizeLimit, err := config.ParseBodySizeLimit(appCfg.Server.BodySizeLimit)
	if err != nil {
		return nil, err
	}

	app := &App{
		config:     appCfg,
		httpClient: upstreamClientConfig(appCfg.Upstream),
		drained:    make(chan struct{}),
	}

	opts := providers.ProviderOptions{
		HTTPClient: httpclient.NewHTTPClient(&app.httpClient),
	}

	var metrics *observability.Metrics
	if appCfg.Metrics.Enabled {
		reg := cfg.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		metrics = observability.NewMetrics(reg)
		opts.Hooks = metrics.Hooks()
	}
	cfg.Factory.SetOptions(opts)

	router, err := providers.Init(appCfg, cfg.Factory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}
	if metrics != nil {
		router.SetObserver(metrics)
	}

	app.logStartupInfo()

	app.server = server.New(router, &server.Config{
		MetricsEnabled:  appCfg.Metrics.Enabled,
		MetricsEndpoint: appCfg.Metrics.Endpoint,
		BodySizeLimit:   bodySizeLimit,
	})

	return app, nil
}

// Handler returns the HTTP handler serving the relay's routes.
func (a *App) Handler() http.Handler {
	return a.server
}

// ListenerAddr returns the address the server listens on, or nil before Start binds.
func (a *App) ListenerAddr() net.Addr {
	return a.server.ListenerAddr()
}

// Start starts the HTTP server on the given address.
// It blocks until the server stops; after Shutdown it also waits for in-flight
// requests to drain, so the caller may exit as soon as it returns.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			<-a.drained
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server, honoring ctx for in-flight requests.
// Repeated calls are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()
	defer close(a.drained)

	slog.Info("shutting down application...")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	slog.Info("application shutdown complete")
	return nil
}

func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	slog.Info("upstream configured",
		"errors", cfg.Upstream.Errors,
		"timeout", a.httpClient.Timeout,
		"response_header_timeout", a.httpClient.ResponseHeaderTimeout,
	)
}

// upstreamClientConfig starts from the client defaults and applies the configured
// timeouts that are set.
func upstreamClientConfig(cfg config.UpstreamConfig) httpclient.ClientConfig {
	clientCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	if cfg.ResponseHeaderTimeout > 0 {
		clientCfg.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout
	}
	return clientCfg
}
