package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			msg = "request body too large"
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		}
		WriteAppError(w, r, apperrors.Wrap(err, apperrors.ErrCodeValidation, msg))
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   apperrors.ErrorCode `json:"error"`
	Message string              `json:"message"`
	Field   string              `json:"field,omitempty"`
}

var statusByCode = map[apperrors.ErrorCode]int{ //nolint:gochecknoglobals // read-only lookup table
	apperrors.ErrCodeUnauthenticated:        http.StatusUnauthorized,
	apperrors.ErrCodeAccountInactive:        http.StatusForbidden,
	apperrors.ErrCodeProfileIncomplete:      http.StatusConflict,
	apperrors.ErrCodeForbidden:              http.StatusForbidden,
	apperrors.ErrCodeValidation:             http.StatusBadRequest,
	apperrors.ErrCodeDuplicateApplication:   http.StatusConflict,
	apperrors.ErrCodeInvalidStateTransition: http.StatusConflict,
	apperrors.ErrCodeImmutableWhileApproved: http.StatusConflict,
	apperrors.ErrCodeJobNotOpen:             http.StatusConflict,
	apperrors.ErrCodeEligibilityMismatch:    http.StatusUnprocessableEntity,
	apperrors.ErrCodeWithdrawalNotAllowed:   http.StatusConflict,
	apperrors.ErrCodeNotFound:               http.StatusNotFound,
	apperrors.ErrCodeConflict:               http.StatusConflict,
	apperrors.ErrCodeDependencyUnavailable:  http.StatusServiceUnavailable,
	apperrors.ErrCodeInternal:               http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for an error code.
func StatusFor(code apperrors.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteAppError writes err as an ErrorBody. Errors that are not AppErrors, and
// internal AppErrors, are logged and reported with a generic message.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code == apperrors.ErrCodeInternal {
		slog.Default().ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: apperrors.ErrCodeInternal, Message: "internal error"})
		return
	}
	if appErr.Code == apperrors.ErrCodeDependencyUnavailable {
		slog.Default().WarnContext(r.Context(), "dependency unavailable", "path", r.URL.Path, "error", err)
	}
	WriteJSON(w, StatusFor(appErr.Code), ErrorBody{Error: appErr.Code, Message: appErr.Message, Field: appErr.Field})
}
