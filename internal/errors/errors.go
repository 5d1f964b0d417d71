package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeUnauthenticated indicates a missing, malformed, expired, or revoked credential.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeAccountInactive indicates a valid credential for an account that is not active yet.
	ErrCodeAccountInactive ErrorCode = "account_inactive"
	// ErrCodeProfileIncomplete indicates the actor's role record does not exist.
	ErrCodeProfileIncomplete ErrorCode = "profile_incomplete"
	// ErrCodeForbidden indicates the actor's role or ownership does not permit the operation.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeDuplicateApplication indicates an application already exists for the (job, applicant) pair.
	ErrCodeDuplicateApplication ErrorCode = "duplicate_application"
	// ErrCodeInvalidStateTransition indicates the entity's current state does not allow the transition.
	ErrCodeInvalidStateTransition ErrorCode = "invalid_state_transition"
	// ErrCodeImmutableWhileApproved indicates an edit attempt on an approved job posting.
	ErrCodeImmutableWhileApproved ErrorCode = "immutable_while_approved"
	// ErrCodeJobNotOpen indicates the job posting is not approved and active.
	ErrCodeJobNotOpen ErrorCode = "job_not_open"
	// ErrCodeEligibilityMismatch indicates the applicant fails the job's eligibility criteria.
	ErrCodeEligibilityMismatch ErrorCode = "eligibility_mismatch"
	// ErrCodeWithdrawalNotAllowed indicates the application has moved past the applied state.
	ErrCodeWithdrawalNotAllowed ErrorCode = "withdrawal_not_allowed"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeDependencyUnavailable indicates an external dependency timed out or could not be reached.
	ErrCodeDependencyUnavailable ErrorCode = "dependency_unavailable"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated creates a new Unauthenticated error.
func Unauthenticated(message string) *AppError {
	return New(ErrCodeUnauthenticated, message)
}

// AccountInactive creates a new AccountInactive error.
func AccountInactive(message string) *AppError {
	return New(ErrCodeAccountInactive, message)
}

// ProfileIncomplete creates a new ProfileIncomplete error.
func ProfileIncomplete(message string) *AppError {
	return New(ErrCodeProfileIncomplete, message)
}

// Forbidden creates a new Forbidden error.
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return Newf(ErrCodeNotFound, format, args...)
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message)
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return Newf(ErrCodeValidation, format, args...)
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidTransition creates a new InvalidStateTransition error describing the refused move.
func InvalidTransition(entity string, from, to any) *AppError {
	return Newf(ErrCodeInvalidStateTransition, "%s cannot transition from %v to %v", entity, from, to)
}

// DependencyUnavailable wraps a dependency failure so callers see a single retryable category.
func DependencyUnavailable(err error, dependency string) *AppError {
	return &AppError{
		Code:    ErrCodeDependencyUnavailable,
		Message: dependency + " is unavailable",
		Cause:   err,
	}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return isCode(err, code)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool {
	return isCode(err, ErrCodeForbidden)
}

// IsInvalidTransition checks if an error is an InvalidStateTransition error.
func IsInvalidTransition(err error) bool {
	return isCode(err, ErrCodeInvalidStateTransition)
}

// IsDependencyUnavailable checks if an error is a DependencyUnavailable error.
func IsDependencyUnavailable(err error) bool {
	return isCode(err, ErrCodeDependencyUnavailable)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// IsAppError reports whether err wraps an AppError of any code.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
