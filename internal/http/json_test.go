package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteAppError_StatusMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code   apperrors.ErrorCode
		status int
	}{
		{apperrors.ErrCodeUnauthenticated, http.StatusUnauthorized},
		{apperrors.ErrCodeAccountInactive, http.StatusForbidden},
		{apperrors.ErrCodeProfileIncomplete, http.StatusConflict},
		{apperrors.ErrCodeForbidden, http.StatusForbidden},
		{apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.ErrCodeDuplicateApplication, http.StatusConflict},
		{apperrors.ErrCodeInvalidStateTransition, http.StatusConflict},
		{apperrors.ErrCodeImmutableWhileApproved, http.StatusConflict},
		{apperrors.ErrCodeJobNotOpen, http.StatusConflict},
		{apperrors.ErrCodeEligibilityMismatch, http.StatusUnprocessableEntity},
		{apperrors.ErrCodeWithdrawalNotAllowed, http.StatusConflict},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeConflict, http.StatusConflict},
		{apperrors.ErrCodeDependencyUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			err := fmt.Errorf("wrapped: %w", &apperrors.AppError{Code: tt.code, Message: "msg", Field: "f"})
			WriteAppError(rec, req, err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeErrorBody(t, rec)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, "msg", body.Message)
			assert.Equal(t, "f", body.Field)
		})
	}
}

func TestWriteAppError_InternalHidesDetail(t *testing.T) {
	t.Parallel()
	for name, err := range map[string]error{
		"plain":    errors.New("pq: relation \"actors\" does not exist"),
		"internal": apperrors.Wrap(errors.New("disk full"), apperrors.ErrCodeInternal, "save failed"),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			WriteAppError(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeErrorBody(t, rec)
			assert.Equal(t, apperrors.ErrCodeInternal, body.Error)
			assert.Equal(t, "internal error", body.Message)
			assert.NotContains(t, rec.Body.String(), "disk full")
			assert.NotContains(t, rec.Body.String(), "relation")
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		ok      bool
		message string
	}{
		{name: "valid", body: `{"name":"x"}`, ok: true},
		{name: "unknown field", body: `{"name":"x","extra":1}`, message: "invalid JSON body"},
		{name: "malformed", body: `{"name":`, message: "invalid JSON body"},
		{name: "empty", body: ``, message: "request body is required"},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, message: "request body too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			ok := DecodeJSON(rec, req, &dst)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "x", dst.Name)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeErrorBody(t, rec)
			assert.Equal(t, apperrors.ErrCodeValidation, body.Error)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestParseLimitOffset(t *testing.T) {
	t.Parallel()
	tests := []struct {
		query       string
		limit, offs int
	}{
		{"", 20, 0},
		{"limit=5&offset=10", 5, 10},
		{"limit=0&offset=-3", 1, 0},
		{"limit=500", 100, 0},
		{"limit=abc", 20, 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		lim, off := ParseLimitOffset(r, defaultPageSize, 100)
		assert.Equal(t, tt.limit, lim, tt.query)
		assert.Equal(t, tt.offs, off, tt.query)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/?access_token=q-token", nil)
	assert.Empty(t, bearerToken(r, false))
	assert.Equal(t, "q-token", bearerToken(r, true))

	r.Header.Set("Authorization", "bearer  h-token ")
	assert.Equal(t, "h-token", bearerToken(r, true))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, bearerToken(r, false))
}
