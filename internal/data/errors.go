package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/placementhub/placement-engine/internal/core"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// Shared sentinel errors for data-layer repositories.
var (
	ErrActorIDRequired       = errors.New("actor_id is required")
	ErrJobIDRequired         = errors.New("job_id is required")
	ErrApplicationIDRequired = errors.New("application_id is required")
	ErrRecipientIDRequired   = errors.New("recipient_id is required")
)

// dbErr wraps a storage error with the operation name after mapping it onto
// the application error taxonomy. Missing rows become NotFound for entity.
func dbErr(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return fmt.Errorf("%s: %w", op, apperrors.NotFoundf("%s not found", entity))
	}
	return fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
}

// condErr is dbErr for conditional writes: no matching row means the
// precondition failed and the caller must re-read to classify.
func condErr(op string, err error) error {
	if isNoRows(err) {
		return fmt.Errorf("%s: %w", op, core.ErrConditionNotMet)
	}
	return fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}
