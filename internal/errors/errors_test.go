package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  &AppError{Code: ErrCodeForbidden, Message: "recruiter role required"},
			want: "recruiter role required",
		},
		{
			name: "message with cause",
			err:  &AppError{Code: ErrCodeInternal, Message: "internal error", Cause: errors.New("boom")},
			want: "internal error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("redis down")
	err := DependencyUnavailable(cause, "identity cache")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if err.Message != "identity cache is unavailable" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestConstructors_SetCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want ErrorCode
	}{
		{"unauthenticated", Unauthenticated("x"), ErrCodeUnauthenticated},
		{"account inactive", AccountInactive("x"), ErrCodeAccountInactive},
		{"profile incomplete", ProfileIncomplete("x"), ErrCodeProfileIncomplete},
		{"forbidden", Forbidden("x"), ErrCodeForbidden},
		{"not found", NotFound("x"), ErrCodeNotFound},
		{"not foundf", NotFoundf("job %s", "1"), ErrCodeNotFound},
		{"conflict", Conflict("x"), ErrCodeConflict},
		{"validation", Validation("x"), ErrCodeValidation},
		{"validationf", Validationf("%s is required", "title"), ErrCodeValidation},
		{"internal", Internal("x"), ErrCodeInternal},
		{"invalid transition", InvalidTransition("application", "applied", "selected"), ErrCodeInvalidStateTransition},
		{"generic", New(ErrCodeJobNotOpen, "closed"), ErrCodeJobNotOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.want {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.want)
			}
		})
	}
}

func TestInvalidTransition_Message(t *testing.T) {
	err := InvalidTransition("application", "applied", "selected")
	want := "application cannot transition from applied to selected"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("title", "title is required")
	if err.Field != "title" {
		t.Errorf("Field = %q, want title", err.Field)
	}
	if GetField(err) != "title" {
		t.Errorf("GetField() = %q, want title", GetField(err))
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "x"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestPredicates_ThroughWrapping(t *testing.T) {
	base := InvalidTransition("verification", "approved", "approved")
	wrapped := fmt.Errorf("approve verification: %w", base)

	if !IsInvalidTransition(wrapped) {
		t.Error("IsInvalidTransition should see through fmt.Errorf wrapping")
	}
	if !Is(wrapped, ErrCodeInvalidStateTransition) {
		t.Error("Is should match the wrapped code")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound should not match")
	}
	if GetCode(wrapped) != ErrCodeInvalidStateTransition {
		t.Errorf("GetCode() = %v", GetCode(wrapped))
	}
}

func TestGetCode_NonAppError(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
	if IsAppError(errors.New("plain")) {
		t.Error("IsAppError should be false for plain errors")
	}
}
