package prom

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkCountsKnownMetrics(t *testing.T) {
	s := NewSink()

	s.Count("transition", 1, map[string]string{"machine": "application", "to": "shortlisted", "result": "success"})
	s.Count("transition", 2, map[string]string{"machine": "application", "to": "shortlisted", "result": "success"})
	s.Count("unknown.metric", 1, nil)
	s.Count("transition", -1, map[string]string{"machine": "application"})

	got := testutil.ToFloat64(s.counters["transition"].vec.WithLabelValues("application", "shortlisted", "success", ""))
	assert.InDelta(t, 3.0, got, 0.001)
}

func TestSinkTimingAndHandler(t *testing.T) {
	s := NewSink()
	s.Timing("http.request.duration", 12*time.Millisecond, map[string]string{"method": "GET", "route": "/api/jobs"})
	s.Count("http.request", 1, map[string]string{"method": "GET", "route": "/api/jobs", "status": "200"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `placement_http_requests_total{method="GET",route="/api/jobs",status="200"} 1`)
	assert.Contains(t, string(body), "placement_http_request_duration_ms_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
