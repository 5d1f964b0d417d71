package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/placementhub/placement-engine/config"
	redisadapter "github.com/placementhub/placement-engine/internal/adapters/redis"
	"github.com/placementhub/placement-engine/internal/adapters/wsnotify"
	"github.com/placementhub/placement-engine/internal/core"
	"github.com/placementhub/placement-engine/internal/data"
	httpx "github.com/placementhub/placement-engine/internal/http"
	"github.com/placementhub/placement-engine/internal/observability/metrics"
	"github.com/placementhub/placement-engine/internal/observability/notify/pagerduty"
	"github.com/placementhub/placement-engine/internal/observability/notify/slack"
	"github.com/placementhub/placement-engine/internal/observability/prom"
	"github.com/placementhub/placement-engine/internal/observability/statsd"
	"github.com/placementhub/placement-engine/internal/ports"
	"github.com/placementhub/placement-engine/internal/service"
	"github.com/placementhub/placement-engine/internal/service/opsalert"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Identity      *service.IdentityService
	Accounts      *service.AccountService
	Verifications *service.VerificationService
	Jobs          *service.JobPostingService
	Applications  *service.ApplicationService
	Notifications *service.NotificationService
	Live          LiveNotifications
	HealthChecks  map[string]httpx.HealthCheck
	Observability ObservabilityContainer
}

// LiveNotifications groups the websocket hub and its cross-replica relay.
type LiveNotifications struct {
	Hub *wsnotify.Hub
	// Bus is nil when Redis is unavailable or the relay service is disabled.
	Bus *redisadapter.NotificationBus
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Statsd    *statsd.Client
	Prom      *prom.Sink
	Sink      statsd.Sink
	OpsAlerts *opsalert.Service
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Verifier    ports.CredentialVerifier
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Actors        *data.ActorRepo
	Profiles      *data.ProfileRepo
	Verifications *data.VerificationRepo
	Jobs          *data.JobPostingRepo
	Applications  *data.ApplicationRepo
	Notifications *data.NotificationRepo
	Cache         *data.RedisCacheRepo
}

// buildObservability configures metrics and ops alert adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var out ObservabilityContainer
	var sinks metrics.Multi

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "placement",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			out.Statsd = client
			sinks = append(sinks, client)
		}
	}
	if cfg.Metrics.PrometheusEnabled {
		out.Prom = prom.NewSink()
		sinks = append(sinks, out.Prom)
	}
	if len(sinks) > 0 {
		out.Sink = sinks
	}

	out.OpsAlerts = buildOpsAlerts(obsLogger, cfg.Notifications)
	return out
}

func buildOpsAlerts(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *opsalert.Service {
	if !cfg.Enabled {
		return opsalert.NewService(opsalert.Options{Logger: logger})
	}

	sinks := make([]opsalert.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
			ConsoleURL: cfg.Slack.ConsoleURL,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, opsalert.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, opsalert.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return opsalert.NewService(opsalert.Options{Logger: logger, Sinks: sinks})
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, rdb redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		Actors:        data.NewActorRepo(db),
		Profiles:      data.NewProfileRepo(db),
		Verifications: data.NewVerificationRepo(db),
		Jobs:          data.NewJobPostingRepo(db),
		Applications:  data.NewApplicationRepo(db),
		Notifications: data.NewNotificationRepo(db),
	}
	if rdb != nil {
		repos.Cache = data.NewRedisCacheRepo(rdb)
	}
	return repos
}

// originChecker accepts same-origin requests plus the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			normalized = append(normalized, strings.ToLower(o))
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return slices.Contains(normalized, strings.ToLower(strings.TrimRight(origin, "/")))
	}
}

func buildLiveNotifications(cfg *config.AppConfig, rdb redis.UniversalClient, logger *slog.Logger) LiveNotifications {
	live := LiveNotifications{
		Hub: wsnotify.NewHub(wsnotify.Options{
			CheckOrigin: originChecker(cfg.HTTP.AllowedOrigins),
			Logger:      logger,
		}),
	}
	if rdb != nil && cfg.IsNotificationRelayEnabled() {
		live.Bus = redisadapter.NewNotificationBus(rdb, logger)
	}
	return live
}

// publisher picks where new notifications are pushed. With the relay running
// every replica, including this one, receives them from Redis.
//
//nolint:ireturn // either the Redis bus or the local hub.
func (l LiveNotifications) publisher() ports.NotificationPublisher {
	if l.Bus != nil {
		return l.Bus
	}
	return l.Hub
}

func buildHealthChecks(db *sql.DB, rdb redis.UniversalClient) map[string]httpx.HealthCheck {
	checks := map[string]httpx.HealthCheck{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// DomainServicesOptions groups the inputs to buildDomainServices.
type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Verifier      ports.CredentialVerifier
	Live          LiveNotifications
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires business services using repositories and observability adapters.
func buildDomainServices(opts *DomainServicesOptions) (ServiceContainer, error) {
	if opts == nil {
		return ServiceContainer{}, errors.New("domain services options are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	repos := opts.Repos
	sink := opts.Observability.Sink

	identity := BuildIdentityService(IdentityConfig{
		Verifier: opts.Verifier,
		Actors:   repos.Actors,
		Cache:    cacheOrNil(repos.Cache),
		Settings: appCfg.Identity,
		Logger:   logger,
	})

	notifications := service.NewNotificationService(service.NotificationServiceOptions{
		Repo: repos.Notifications,
		Delivery: service.NotificationDelivery{
			Publisher: opts.Live.publisher(),
			Alerts:    opts.Observability.OpsAlerts,
			Metrics:   sink,
		},
		Logger: logger,
	})

	eligibility, err := service.NewProfileEligibility(service.EligibilityPaths{
		Branch:   appCfg.Eligibility.BranchPath,
		CGPA:     appCfg.Eligibility.CGPAPath,
		GradYear: appCfg.Eligibility.GradYearPath,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("eligibility paths: %w", err)
	}

	return ServiceContainer{
		Identity: identity,
		Accounts: service.NewAccountService(service.AccountServiceOptions{
			Actors:   repos.Actors,
			Profiles: repos.Profiles,
			Logger:   logger,
		}),
		Verifications: service.NewVerificationService(service.VerificationServiceOptions{
			Repo: repos.Verifications,
			Deps: service.VerificationDeps{
				Actors:      repos.Actors,
				Notifier:    notifications,
				Invalidator: identity,
				Metrics:     sink,
			},
			Logger: logger,
		}),
		Jobs: service.NewJobPostingService(service.JobPostingServiceOptions{
			Repo:     repos.Jobs,
			Notifier: notifications,
			Config:   service.JobPostingConfig{Metrics: sink, Logger: logger},
		}),
		Applications: service.NewApplicationService(service.ApplicationServiceOptions{
			Stores: service.ApplicationStores{
				Applications: repos.Applications,
				Jobs:         repos.Jobs,
				Profiles:     repos.Profiles,
			},
			Notifier: notifications,
			Config: service.ApplicationConfig{
				Eligibility:     eligibility,
				BulkConcurrency: appCfg.Applications.BulkConcurrency,
				BulkMaxIDs:      appCfg.Applications.BulkMaxIDs,
				Metrics:         sink,
				Logger:          logger,
			},
		}),
		Notifications: notifications,
		Live:          opts.Live,
		Observability: opts.Observability,
	}, nil
}

// cacheOrNil keeps a nil *RedisCacheRepo from becoming a non-nil interface.
//
//nolint:ireturn // returns the cache port.
func cacheOrNil(c *data.RedisCacheRepo) core.CacheRepository {
	if c == nil {
		return nil
	}
	return c
}

// NewServices builds the service container.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	if deps.Verifier == nil {
		return ServiceContainer{}, errors.New("credential verifier is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}

	observability := buildObservability(logger, cfg.Observability)
	repos := buildRepositories(deps.DB, deps.RedisClient)
	container, err := buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Verifier:      deps.Verifier,
		Live:          buildLiveNotifications(cfg, deps.RedisClient, logger),
		Observability: observability,
		Config:        cfg,
		Logger:        logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}
	container.HealthChecks = buildHealthChecks(deps.DB, deps.RedisClient)
	return container, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}
		handles = append(handles, backgroundServiceHandle{mode: svc.mode, name: svc.name, done: done})
	}
	return handles
}

func newNotificationRelayBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeNotificationRelay,
		name: "notification relay",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			return RunNotificationRelay(ctx, NotificationRelayConfig{
				Live:   deps.cfg.Services.Live,
				Logger: deps.logger,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newNotificationRelayBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		services:    cfg.Services,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	services    ServiceContainer
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		if err := ShutdownHTTPServer(ShutdownConfig{
			Server: cfg.httpServer,
			Live:   cfg.services.Live,
			Logger: cfg.logger,
		}); err != nil {
			return err
		}
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	// Let in-flight ops alerts finish before the process exits.
	if alerts := cfg.services.Observability.OpsAlerts; alerts != nil {
		alerts.Wait()
	}
	if client := cfg.services.Observability.Statsd; client != nil {
		if err := client.Close(); err != nil {
			cfg.logger.Warn("close statsd client", "error", err)
		}
	}
	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
