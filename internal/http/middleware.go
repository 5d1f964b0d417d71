package httpx

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/observability/metrics"
	"github.com/placementhub/placement-engine/internal/observability/statsd"
)

// ActorResolver turns a bearer token into an actor.
type ActorResolver interface {
	Resolve(ctx context.Context, token string) (domainauth.Actor, error)
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrapWriter(w)
			next.ServeHTTP(ww, r)
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			}
			if actor, ok := ActorFromContext(r.Context()); ok {
				attrs = append(attrs, slog.String("actor_id", actor.ID))
			}
			logger.InfoContext(r.Context(), "http", attrs...)
		})
	}
}

// Metrics returns a middleware that counts requests by mux pattern and status.
func Metrics(sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if sink == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrapWriter(w)
			next.ServeHTTP(ww, r)
			metrics.EmitHTTPRequest(sink, metrics.HTTPRequestMetric{
				Method:   r.Method,
				Route:    r.Pattern,
				Status:   ww.status,
				Duration: time.Since(start),
			})
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapWriter(w http.ResponseWriter) *respWriter {
	if rw, ok := w.(*respWriter); ok {
		return rw
	}
	return &respWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Flush implements http.Flusher.
func (w *respWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker so websocket upgrades pass through.
func (w *respWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("http.Hijacker not supported")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteJSON(w, http.StatusInternalServerError,
						ErrorBody{Error: apperrors.ErrCodeInternal, Message: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireActor returns a middleware that resolves the bearer token and stores
// the actor in the request context. Resolution failures are written as AppErrors.
func RequireActor(resolver ActorResolver) func(http.Handler) http.Handler {
	return requireActor(resolver, false)
}

// RequireStreamActor is RequireActor that also accepts ?access_token= for websocket clients.
func RequireStreamActor(resolver ActorResolver) func(http.Handler) http.Handler {
	return requireActor(resolver, true)
}

func requireActor(resolver ActorResolver, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r, allowQuery)
			if token == "" {
				WriteAppError(w, r, apperrors.Unauthenticated("missing bearer token"))
				return
			}
			actor, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				WriteAppError(w, r, err)
				return
			}
			ctx := SetActorInContext(r.Context(), actor, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// actorOrFail returns the request's actor, writing 401 when the route was not wrapped by RequireActor.
func actorOrFail(w http.ResponseWriter, r *http.Request) (domainauth.Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		WriteAppError(w, r, apperrors.Unauthenticated("authentication required"))
	}
	return actor, ok
}
