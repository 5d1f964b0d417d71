package httpx

import (
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

func TestRequireActor(t *testing.T) {
	t.Parallel()
	identity := newFakeIdentity()
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		seen = actor.ID + "|" + tokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireActor(identity)(next)

	tests := []struct {
		name   string
		header string
		status int
		code   apperrors.ErrorCode
	}{
		{name: "missing", status: http.StatusUnauthorized, code: apperrors.ErrCodeUnauthenticated},
		{name: "unknown", header: "Bearer nope", status: http.StatusUnauthorized, code: apperrors.ErrCodeUnauthenticated},
		{name: "inactive", header: "Bearer inactive-token", status: http.StatusForbidden, code: apperrors.ErrCodeAccountInactive},
		{name: "store down", header: "Bearer down-token", status: http.StatusServiceUnavailable, code: apperrors.ErrCodeDependencyUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeErrorBody(t, rec).Error)
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer recruiter-token")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "rec-1|recruiter-token", seen)

	// The query fallback is only honoured on stream routes.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me?access_token=recruiter-token", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	RequireStreamActor(identity)(next).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/notifications/stream?access_token=applicant-token", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "stu-1|applicant-token", seen)
}

func TestRecover(t *testing.T) {
	t.Parallel()
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, decodeErrorBody(t, rec).Error)
}

type countingSink struct {
	mu     sync.Mutex
	counts []map[string]string
}

func (s *countingSink) Count(name string, _ int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "http.request" {
		s.counts = append(s.counts, tags)
	}
}
func (s *countingSink) Gauge(string, float64, map[string]string)        {}
func (s *countingSink) Timing(string, time.Duration, map[string]string) {}

func TestMetrics_UsesMuxPattern(t *testing.T) {
	t.Parallel()
	sink := &countingSink{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Logging(slog.New(slog.NewTextHandler(io.Discard, nil)))(Metrics(sink)(mux))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/jobs/123", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, sink.counts, 2)
	assert.Equal(t, "GET /api/jobs/{id}", sink.counts[0]["route"])
	assert.Equal(t, "418", sink.counts[0]["status"])
	assert.Equal(t, "unmatched", sink.counts[1]["route"])
	assert.Equal(t, "404", sink.counts[1]["status"])
}

func TestCompression(t *testing.T) {
	t.Parallel()
	payload := strings.Repeat(`{"k":"v"}`, 100)
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, payload)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	h.ServeHTTP(rec, req)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{\"k\":\"v\"}`)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip;q=0")
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Upgrade", "websocket")
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestAcceptsGzip(t *testing.T) {
	t.Parallel()
	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("br, GZIP;q=0.5"))
	assert.False(t, acceptsGzip(""))
	assert.False(t, acceptsGzip("deflate"))
	assert.False(t, acceptsGzip("gzip; q=0"))
	assert.False(t, acceptsGzip("x-gzip"))
}
