package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	for _, in := range []error{context.DeadlineExceeded, context.Canceled} {
		err := MapDBError(fmt.Errorf("query: %w", in))
		if !IsDependencyUnavailable(err) {
			t.Errorf("MapDBError(%v) code = %v, want dependency_unavailable", in, GetCode(err))
		}
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	for _, in := range []error{pgx.ErrNoRows, sql.ErrNoRows} {
		if err := MapDBError(in); !IsNotFound(err) {
			t.Errorf("MapDBError(%v) should be NotFound, got %v", in, GetCode(err))
		}
	}
}

func TestMapDBError_PassesThroughAppErrors(t *testing.T) {
	in := Forbidden("not yours")
	if got := MapDBError(in); got != error(in) {
		t.Errorf("MapDBError() = %v, want the original AppError", got)
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name: "column name metadata",
			pgErr: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				ColumnName: "email",
			},
			wantField: "email",
		},
		{
			name: "multi-column detail",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "applications_job_applicant_key",
				Detail:         "Key (job_id, applicant_id)=(a, b) already exists.",
			},
			wantField: "job_id, applicant_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Fatalf("code = %v, want conflict", GetCode(err))
			}
			if GetField(err) != tt.wantField {
				t.Errorf("field = %q, want %q", GetField(err), tt.wantField)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "applications_job_applicant_key"}
	wrapped := fmt.Errorf("insert: %w", pgErr)

	if !IsUniqueViolation(wrapped, "") {
		t.Error("expected unique violation match without constraint filter")
	}
	if !IsUniqueViolation(wrapped, "applications_job_applicant_key") {
		t.Error("expected unique violation match on constraint")
	}
	if IsUniqueViolation(wrapped, "actors_email_key") {
		t.Error("constraint filter should not match a different constraint")
	}
	if IsUniqueViolation(errors.New("plain"), "") {
		t.Error("plain error is not a unique violation")
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	err := MapDBError(&pgconn.PgError{
		Code:   pgerrcode.ForeignKeyViolation,
		Detail: `Key (recipient_id)=(x) is not present in table "actors".`,
	})
	if !IsNotFound(err) {
		t.Fatalf("code = %v, want not_found", GetCode(err))
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Message != "Account does not exist." {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestMapDBError_InvalidInput(t *testing.T) {
	for _, code := range []string{pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.InvalidTextRepresentation} {
		err := MapDBError(&pgconn.PgError{Code: code, ColumnName: "status"})
		if !IsValidation(err) {
			t.Errorf("code %s mapped to %v, want validation", code, GetCode(err))
		}
		if GetField(err) != "status" {
			t.Errorf("code %s field = %q", code, GetField(err))
		}
	}
}

func TestMapDBError_UnknownErrorsAreInternal(t *testing.T) {
	tests := []error{
		&pgconn.PgError{Code: pgerrcode.DivisionByZero},
		errors.New("driver exploded"),
	}
	for _, in := range tests {
		err := MapDBError(in)
		if !IsInternal(err) {
			t.Errorf("MapDBError(%v) = %v, want internal", in, GetCode(err))
		}
		var appErr *AppError
		if errors.As(err, &appErr) && appErr.Message != "internal error" {
			t.Errorf("internal message leaks detail: %q", appErr.Message)
		}
	}
}

func TestMapDBError_ServerUnavailable(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.AdminShutdown})
	if !IsDependencyUnavailable(err) {
		t.Errorf("code = %v, want dependency_unavailable", GetCode(err))
	}
}

func TestMapTableToDomain(t *testing.T) {
	tests := map[string]string{
		"job_postings":   "Job posting",
		" APPLICATIONS ": "Application",
		"audit_log":      "audit log",
	}
	for in, want := range tests {
		if got := mapTableToDomain(in); got != want {
			t.Errorf("mapTableToDomain(%q) = %q, want %q", in, got, want)
		}
	}
}
