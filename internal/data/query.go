package data

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/placementhub/placement-engine/config"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = config.PageSizeLimit
)

// page clamps caller paging into the supported window.
func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// checkID rejects identifiers that cannot name a row. A malformed id is
// reported as a missing entity rather than a database type error.
func checkID(op, entity, id string) error {
	if uuid.Validate(id) != nil {
		return fmt.Errorf("%s: %w", op, apperrors.NotFoundf("%s not found", entity))
	}
	return nil
}

const (
	sortAscending  = "ASC"
	sortDescending = "DESC"
)
