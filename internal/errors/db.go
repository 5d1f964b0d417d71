package errors

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Regular expressions for parsing PgError.Detail messages.
var (
	// reKeyField extracts field name from unique violation detail: "Key (field)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reNotPresent detects missing parent: "... is not present in table ...".
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// MapDBError maps database errors to AppError instances.
// It handles common database error patterns including:
// - pgx.ErrNoRows / sql.ErrNoRows → NotFound
// - Unique constraint violations → Conflict (Field carries the violated column list)
// - Foreign key violations on insert → NotFound for the referenced entity
// - Check and NOT NULL violations → Validation
// - Context deadlines, cancellations and network failures → DependencyUnavailable
//
// Already-mapped AppErrors pass through unchanged. Anything else becomes Internal.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if IsAppError(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return DependencyUnavailable(err, "database")
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return &AppError{
			Code:    ErrCodeNotFound,
			Message: "Resource not found",
			Cause:   err,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	var netErr net.Error
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return DependencyUnavailable(err, "database")
	}

	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Cause:   err,
	}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique violation, optionally on a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// mapPgError maps PostgreSQL-specific errors to AppError instances.
func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.InvalidTextRepresentation:
		return mapInvalidInput(pgErr)
	case pgerrcode.QueryCanceled, pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
		return DependencyUnavailable(pgErr, "database")
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "internal error",
			Cause:   pgErr,
		}
	}
}

// mapUniqueViolation maps unique constraint violations to Conflict errors.
func mapUniqueViolation(pgErr *pgconn.PgError) error {
	field := pgErr.ColumnName
	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}

	return &AppError{
		Code:    ErrCodeConflict,
		Message: "This value already exists.",
		Field:   field,
		Cause:   pgErr,
	}
}

// mapForeignKeyViolation maps a missing parent row to NotFound for the referenced entity.
func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	entity := "Referenced resource"
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		entity = mapTableToDomain(m[1])
	}
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: entity + " does not exist.",
		Cause:   pgErr,
	}
}

// mapInvalidInput maps CHECK, NOT NULL and malformed literal errors to Validation errors.
func mapInvalidInput(pgErr *pgconn.PgError) error {
	if pgErr.ColumnName != "" {
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "This field has an invalid value.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	}
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "Invalid data. Please check your input.",
		Cause:   pgErr,
	}
}

// mapTableToDomain maps internal table names to user-friendly domain names.
func mapTableToDomain(tableName string) string {
	tableName = strings.ToLower(strings.TrimSpace(tableName))

	domainMap := map[string]string{
		"actors":        "Account",
		"profiles":      "Profile",
		"verifications": "Verification",
		"job_postings":  "Job posting",
		"applications":  "Application",
		"notifications": "Notification",
	}
	if name, ok := domainMap[tableName]; ok {
		return name
	}
	return strings.ReplaceAll(tableName, "_", " ")
}
