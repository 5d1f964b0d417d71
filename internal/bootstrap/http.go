package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/placementhub/placement-engine/config"
	httpx "github.com/placementhub/placement-engine/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(buildRouterServices(cfg.Services, appCfg.HTTP, logger))
	return startServer(logger, handler, appCfg.HTTP.Addr)
}

func buildRouterServices(svc ServiceContainer, httpCfg config.HTTPConfig, logger *slog.Logger) httpx.RouterServices {
	services := httpx.RouterServices{
		Identity:         svc.Identity,
		Accounts:         svc.Accounts,
		Verifications:    svc.Verifications,
		Jobs:             svc.Jobs,
		Applications:     svc.Applications,
		Notifications:    svc.Notifications,
		HealthChecks:     svc.HealthChecks,
		MaxPageSize:      httpCfg.MaxPageSize,
		CompressionLevel: httpCfg.CompressionLevel,
		Logger:           logger,
	}
	// Assigning a nil *Hub would produce a non-nil interface.
	if svc.Live.Hub != nil {
		services.Stream = svc.Live.Hub
	}
	if svc.Observability.Sink != nil {
		services.Metrics = svc.Observability.Sink
	}
	if svc.Observability.Prom != nil {
		services.MetricsHandler = svc.Observability.Prom.Handler()
	}
	return services
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Websocket streams hijack the connection, so this only bounds plain responses.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Live    LiveNotifications
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	if cfg.Live.Hub != nil {
		cfg.Live.Hub.Close()
	}

	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
