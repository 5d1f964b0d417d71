package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/placementhub/placement-engine/internal/core"
	"github.com/placementhub/placement-engine/internal/data/pgxutil"
	"github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// ProfileRepo stores role-specific profile documents. It also serves as the
// profile store consulted for eligibility and completion.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// Get retrieves the profile for an actor.
func (r *ProfileRepo) Get(ctx context.Context, actorID string) (*model.Profile, error) {
	if err := checkID("get profile", "profile", actorID); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.Profile](ctx, r.DB,
		`SELECT `+profileColumns+` FROM profiles WHERE actor_id = $1`, actorID)
	if err != nil {
		return nil, dbErr("get profile", "profile", err)
	}
	if out.Fields == nil {
		out.Fields = map[string]any{}
	}
	return out, nil
}

// Save replaces the document and stored completion score.
func (r *ProfileRepo) Save(ctx context.Context, params core.SaveProfileParams) (*model.Profile, error) {
	fields := params.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	out, err := pgxutil.QueryOne[model.Profile](ctx, r.DB, `
		UPDATE profiles SET fields = $2, completion = $3, updated_at = $4
		WHERE actor_id = $1
		RETURNING `+profileColumns,
		params.ActorID, fields, params.Completion, r.timeProvider.Now())
	if err != nil {
		return nil, dbErr("save profile", "profile", err)
	}
	return out, nil
}

// GetProfileFields returns the document for an actor whose role matches.
func (r *ProfileRepo) GetProfileFields(ctx context.Context, actorID string, role auth.Role) (map[string]any, error) {
	p, err := r.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if p.Role != role {
		return nil, fmt.Errorf("get profile fields: %w", apperrors.NotFound("profile not found"))
	}
	return p.Fields, nil
}
