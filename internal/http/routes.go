// Package httpx exposes the placement engine over a JSON HTTP API.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/placementhub/placement-engine/internal/observability/statsd"
)

// IdentityService resolves and revokes bearer credentials.
type IdentityService interface {
	ActorResolver
	TokenRevoker
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Identity      IdentityService
	Accounts      AccountService
	Verifications VerificationService
	Jobs          JobPostingService
	Applications  ApplicationService
	Notifications NotificationService
	// Optional: websocket feed for GET /api/notifications/stream.
	Stream NotificationStream
	// Optional: dependency checks reported by /healthz.
	HealthChecks map[string]HealthCheck
	// Optional: Prometheus exposition served at /metrics.
	MetricsHandler http.Handler
	Metrics        statsd.Sink
	MaxPageSize    int
	// gzip level for compressible responses; 0 uses the gzip default.
	CompressionLevel int
	Logger           *slog.Logger
}

// NewRouter creates and configures the API router with its middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxPage := services.MaxPageSize
	if maxPage <= 0 {
		maxPage = 100
	}

	mux := http.NewServeMux()
	authed := RequireActor(services.Identity)

	accounts := &AccountHandlers{Svc: services.Accounts, Identity: services.Identity}
	registerAccountRoutes(mux, accounts, authed)
	registerVerificationRoutes(mux, &VerificationHandlers{Svc: services.Verifications, MaxPageSize: maxPage}, authed)
	registerJobRoutes(mux, &JobHandlers{Svc: services.Jobs, MaxPageSize: maxPage}, authed)
	registerApplicationRoutes(mux, &ApplicationHandlers{Svc: services.Applications, MaxPageSize: maxPage}, authed)
	notifications := &NotificationHandlers{
		Svc:         services.Notifications,
		Live:        services.Stream,
		MaxPageSize: maxPage,
		Logger:      logger,
	}
	registerNotificationRoutes(mux, notifications, authed)
	mux.Handle("GET /api/notifications/stream", RequireStreamActor(services.Identity)(http.HandlerFunc(notifications.Stream)))

	health := healthHandler(services.HealthChecks)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	if services.MetricsHandler != nil {
		mux.Handle("GET /metrics", services.MetricsHandler)
	}

	var handler http.Handler = mux
	handler = Compression(CompressionConfig{Level: services.CompressionLevel, Logger: logger})(handler)
	handler = Metrics(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

type middleware = func(http.Handler) http.Handler

func registerAccountRoutes(mux *http.ServeMux, h *AccountHandlers, authed middleware) {
	mux.HandleFunc("POST /api/accounts", h.Register)
	mux.Handle("GET /api/me", authed(http.HandlerFunc(h.Me)))
	mux.Handle("PUT /api/me/profile", authed(http.HandlerFunc(h.UpdateProfile)))
	mux.Handle("POST /api/auth/logout", authed(http.HandlerFunc(h.Logout)))
}

func registerVerificationRoutes(mux *http.ServeMux, h *VerificationHandlers, authed middleware) {
	mux.Handle("GET /api/admin/verifications", authed(http.HandlerFunc(h.ListPending)))
	mux.Handle("GET /api/admin/verifications/{actorID}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("POST /api/admin/verifications/{actorID}/approve", authed(http.HandlerFunc(h.Approve)))
	mux.Handle("POST /api/admin/verifications/{actorID}/reject", authed(http.HandlerFunc(h.Reject)))
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers, authed middleware) {
	mux.Handle("POST /api/jobs", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/jobs", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/jobs/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/jobs/{id}", authed(http.HandlerFunc(h.Edit)))
	mux.Handle("PATCH /api/jobs/{id}/active", authed(http.HandlerFunc(h.SetActive)))
	mux.Handle("DELETE /api/jobs/{id}", authed(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /api/admin/jobs/{id}/approve", authed(http.HandlerFunc(h.Approve)))
	mux.Handle("POST /api/admin/jobs/{id}/reject", authed(http.HandlerFunc(h.Reject)))
}

func registerApplicationRoutes(mux *http.ServeMux, h *ApplicationHandlers, authed middleware) {
	mux.Handle("POST /api/jobs/{id}/applications", authed(http.HandlerFunc(h.Apply)))
	mux.Handle("GET /api/jobs/{id}/applications", authed(http.HandlerFunc(h.ListForJob)))
	mux.Handle("GET /api/jobs/{id}/applications/export", authed(http.HandlerFunc(h.ExportForJob)))
	mux.Handle("GET /api/applications", authed(http.HandlerFunc(h.ListMine)))
	mux.Handle("GET /api/applications/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("DELETE /api/applications/{id}", authed(http.HandlerFunc(h.Withdraw)))
	mux.Handle("POST /api/applications/{id}/status", authed(http.HandlerFunc(h.SetStatus)))
	mux.Handle("POST /api/applications/bulk-status", authed(http.HandlerFunc(h.BulkSetStatus)))
}

func registerNotificationRoutes(mux *http.ServeMux, h *NotificationHandlers, authed middleware) {
	mux.Handle("GET /api/notifications", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/notifications/unread-count", authed(http.HandlerFunc(h.UnreadCount)))
	mux.Handle("POST /api/notifications/{id}/read", authed(http.HandlerFunc(h.MarkRead)))
	mux.Handle("POST /api/notifications/read-all", authed(http.HandlerFunc(h.MarkAllRead)))
	mux.Handle("DELETE /api/notifications/{id}", authed(http.HandlerFunc(h.Delete)))
	mux.Handle("DELETE /api/notifications/read", authed(http.HandlerFunc(h.ClearRead)))
}
