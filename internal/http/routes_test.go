package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

type routerHarness struct {
	handler  http.Handler
	identity *fakeIdentity
	accounts *fakeAccounts
	jobs     *fakeJobs
	apps     *fakeApplications
	stream   *fakeStream
	sink     *countingSink
}

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	h := &routerHarness{
		identity: newFakeIdentity(),
		accounts: &fakeAccounts{},
		jobs:     &fakeJobs{},
		apps:     &fakeApplications{},
		stream:   &fakeStream{},
		sink:     &countingSink{},
	}
	h.handler = NewRouter(RouterServices{
		Identity:      h.identity,
		Accounts:      h.accounts,
		Verifications: fakeVerifications{},
		Jobs:          h.jobs,
		Applications:  h.apps,
		Notifications: fakeNotifications{},
		Stream:        h.stream,
		HealthChecks: map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
		Metrics:     h.sink,
		MaxPageSize: 50,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h
}

func (h *routerHarness) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RegisterIsPublic(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodPost, "/api/accounts", "",
		`{"email":"stu@example.edu","display_name":"Stu","role":"applicant"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg model.Registration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, "new-1", reg.Actor.ID)
	require.Len(t, h.accounts.registered, 1)

	rec = h.do(t, http.MethodPost, "/api/accounts", "", `{"email":"taken@example.edu","role":"applicant"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.ErrCodeConflict, decodeErrorBody(t, rec).Error)
}

func TestRouter_AuthenticatedRoutesRequireToken(t *testing.T) {
	h := newRouterHarness(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodPut, "/api/me/profile"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/admin/verifications"},
		{http.MethodPost, "/api/jobs"},
		{http.MethodGet, "/api/jobs/job-1"},
		{http.MethodPatch, "/api/jobs/job-1/active"},
		{http.MethodPost, "/api/jobs/job-1/applications"},
		{http.MethodGet, "/api/jobs/job-1/applications/export"},
		{http.MethodPost, "/api/applications/bulk-status"},
		{http.MethodDelete, "/api/notifications/read"},
		{http.MethodGet, "/api/notifications/stream"},
	}
	for _, rt := range routes {
		rec := h.do(t, rt.method, rt.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}
}

func TestRouter_JobRoutes(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodPost, "/api/jobs", "applicant-token", `{"title":"SWE","description":"Build","location":"Remote"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/jobs", "recruiter-token", `{"title":"SWE","description":"Build","location":"Remote"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPut, "/api/jobs/job-1", "recruiter-token", `{"title":"SWE","description":"Build","location":"Remote"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.ErrCodeImmutableWhileApproved, decodeErrorBody(t, rec).Error)

	rec = h.do(t, http.MethodGet, "/api/jobs/missing", "applicant-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/jobs?status=Pending&q=go&limit=500", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, h.jobs.lastQuery.Status)
	assert.Equal(t, model.ApprovalPending, *h.jobs.lastQuery.Status)
	assert.Equal(t, "go", h.jobs.lastQuery.Q)
	assert.Equal(t, 50, h.jobs.lastQuery.Limit)

	rec = h.do(t, http.MethodPatch, "/api/jobs/job-1/active", "recruiter-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "active", decodeErrorBody(t, rec).Field)

	rec = h.do(t, http.MethodPatch, "/api/jobs/job-1/active", "recruiter-token", `{"active":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/admin/jobs/job-1/approve", "recruiter-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/admin/jobs/job-1/approve", "admin-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/jobs/job-1", "recruiter-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_ApplicationRoutes(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodPost, "/api/jobs/job-1/applications", "applicant-token", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/jobs/closed/applications", "applicant-token", `{"cover_letter":"hi"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.ErrCodeJobNotOpen, decodeErrorBody(t, rec).Error)

	rec = h.do(t, http.MethodPost, "/api/jobs/strict/applications", "applicant-token", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, apperrors.ErrCodeEligibilityMismatch, body.Error)
	assert.Equal(t, "cgpa", body.Field)

	rec = h.do(t, http.MethodPost, "/api/applications/app-1/status", "recruiter-token", `{"status":"on_hold","notes":"later"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ApplicationOnHold, h.apps.lastChange.Status)
	assert.Equal(t, "app-1", h.apps.lastChange.ApplicationID)

	rec = h.do(t, http.MethodPost, "/api/applications/app-1/status", "recruiter-token", `{"status":"hired"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decodeErrorBody(t, rec).Field)

	rec = h.do(t, http.MethodPost, "/api/applications/bulk-status", "recruiter-token",
		`{"application_ids":["a","b"],"status":"shortlisted"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var bulk model.BulkStatusResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bulk))
	assert.Equal(t, 2, bulk.Applied)

	rec = h.do(t, http.MethodDelete, "/api/applications/app-1", "applicant-token", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.ErrCodeWithdrawalNotAllowed, decodeErrorBody(t, rec).Error)

	rec = h.do(t, http.MethodGet, "/api/jobs/job-1/applications/export", "recruiter-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="applications-job-1.xlsx"`)
	assert.Equal(t, "PK\x03\x04", rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/applications?status=applied", "applicant-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_VerificationRoutes(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodGet, "/api/admin/verifications?kind=recruiter", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/admin/verifications?kind=student", "admin-token", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/admin/verifications/rec-9/approve", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var v model.Verification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "rec-9", v.OwnerActorID)
	assert.Nil(t, v.Notes)

	rec = h.do(t, http.MethodPost, "/api/admin/verifications/rec-9/approve", "admin-token", `{"notes":"checked"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.NotNil(t, v.Notes)
	assert.Equal(t, "checked", *v.Notes)

	rec = h.do(t, http.MethodPost, "/api/admin/verifications/rec-9/reject", "admin-token", `{"reason":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "reason", decodeErrorBody(t, rec).Field)
}

func TestRouter_NotificationRoutes(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodGet, "/api/notifications?unread=true", "applicant-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []model.Notification `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 1)

	for path, want := range map[string]int{
		"/api/notifications/unread-count": 3,
	} {
		rec = h.do(t, http.MethodGet, path, "applicant-token", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var c countResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, want, c.Count)
	}

	rec = h.do(t, http.MethodPost, "/api/notifications/read-all", "applicant-token", "")
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
	rec = h.do(t, http.MethodDelete, "/api/notifications/read", "applicant-token", "")
	assert.JSONEq(t, `{"count":5}`, rec.Body.String())
	rec = h.do(t, http.MethodDelete, "/api/notifications/n-1", "applicant-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/notifications/n-9/read", "applicant-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/notifications/stream?access_token=recruiter-token", "", "")
	assert.Equal(t, http.StatusSwitchingProtocols, rec.Code)
	assert.Equal(t, []string{"rec-1"}, h.stream.recipients)
}

func TestRouter_LogoutRevokesPresentedToken(t *testing.T) {
	h := newRouterHarness(t)
	rec := h.do(t, http.MethodPost, "/api/auth/logout", "applicant-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"applicant-token"}, h.identity.revoked)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok"}}`, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")

	assert.NotEmpty(t, h.sink.counts)
}

func TestHealthHandler_Degraded(t *testing.T) {
	t.Parallel()
	handler := healthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"unavailable"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Body.String())
}
