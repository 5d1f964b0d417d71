package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/placementhub/placement-engine/internal/data/pgxutil"
	"github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const (
	actorColumns        = `id, email, display_name, role, active, created_at, updated_at`
	profileColumns      = `actor_id, role, fields, completion, updated_at`
	verificationColumns = `owner_actor_id, kind, status, verified_by, verified_at, rejection_reason, notes, domain_match, created_at, updated_at`
)

// ActorRepo provides database operations for accounts and their role records.
type ActorRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewActorRepo creates a new ActorRepo with real time provider.
func NewActorRepo(db *sql.DB) *ActorRepo {
	return &ActorRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewActorRepoWithTimeProvider creates a new ActorRepo with a custom time provider (useful for tests).
func NewActorRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ActorRepo {
	return &ActorRepo{DB: db, timeProvider: tp}
}

// GetByID retrieves an actor by ID.
func (r *ActorRepo) GetByID(ctx context.Context, id string) (*model.ActorRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrActorIDRequired
	}
	if err := checkID("get actor", "account", id); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.ActorRecord](ctx, r.DB,
		`SELECT `+actorColumns+` FROM actors WHERE id = $1`, id)
	if err != nil {
		return nil, dbErr("get actor", "account", err)
	}
	return out, nil
}

// GetByEmail retrieves an actor by normalized email.
func (r *ActorRepo) GetByEmail(ctx context.Context, email string) (*model.ActorRecord, error) {
	out, err := pgxutil.QueryOne[model.ActorRecord](ctx, r.DB,
		`SELECT `+actorColumns+` FROM actors WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, dbErr("get actor by email", "account", err)
	}
	return out, nil
}

// Register creates the actor, its profile and an optional pending verification atomically.
func (r *ActorRepo) Register(ctx context.Context, params model.CreateActorParams) (*model.Registration, error) {
	now := r.timeProvider.Now()
	fields := params.Profile
	if fields == nil {
		fields = map[string]any{}
	}

	var out model.Registration
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		actor, err := pgxutil.CollectOne[model.ActorRecord](ctx, tx, `
			INSERT INTO actors (email, display_name, role, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING `+actorColumns,
			params.Email, params.DisplayName, params.Role, params.Active, now)
		if err != nil {
			return fmt.Errorf("insert actor: %w", err)
		}
		out.Actor = &actor

		profile, err := pgxutil.CollectOne[model.Profile](ctx, tx, `
			INSERT INTO profiles (actor_id, role, fields, completion, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+profileColumns,
			actor.ID, actor.Role, fields, params.Completion, now)
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		out.Profile = &profile

		if params.Verification == nil {
			return nil
		}
		v, err := pgxutil.CollectOne[model.Verification](ctx, tx, `
			INSERT INTO verifications (owner_actor_id, kind, status, domain_match, created_at, updated_at)
			VALUES ($1, $2, 'pending', $3, $4, $4)
			RETURNING `+verificationColumns,
			actor.ID, params.Verification.Kind, params.Verification.DomainMatch, now)
		if err != nil {
			return fmt.Errorf("insert verification: %w", err)
		}
		out.Verification = &v
		return nil
	}})
	if err != nil {
		if apperrors.IsUniqueViolation(err, "actors_email_key") {
			return nil, &apperrors.AppError{
				Code:    apperrors.ErrCodeConflict,
				Message: "an account with this email already exists",
				Field:   "email",
				Cause:   err,
			}
		}
		return nil, dbErr("register actor", "account", err)
	}
	return &out, nil
}

// HasRoleRecord reports whether the actor's profile exists and, for roles that
// need verification, whether the verification row exists too.
func (r *ActorRepo) HasRoleRecord(ctx context.Context, actorID string, role auth.Role) (bool, error) {
	if uuid.Validate(actorID) != nil {
		return false, nil
	}
	var ok bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE actor_id = $1)
		   AND ($2 = FALSE OR EXISTS (SELECT 1 FROM verifications WHERE owner_actor_id = $1))`,
		actorID, role.RequiresVerification(),
	).Scan(&ok)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, dbErr("check role record", "account", err)
	}
	return ok, nil
}

// CreateAdmin inserts an active admin with an empty profile. Used by the operator CLI.
func (r *ActorRepo) CreateAdmin(ctx context.Context, email, displayName string) (*model.ActorRecord, error) {
	reg, err := r.Register(ctx, model.CreateActorParams{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: strings.TrimSpace(displayName),
		Role:        auth.RoleAdmin,
		Active:      true,
		Completion:  100,
	})
	if err != nil {
		return nil, err
	}
	return reg.Actor, nil
}
