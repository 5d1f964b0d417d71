package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/placementhub/placement-engine/internal/data/database"
	"github.com/placementhub/placement-engine/internal/data/pgxutil"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

// VerificationRepo persists recruiter and alumni verification records.
type VerificationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewVerificationRepo creates a new VerificationRepo with real time provider.
func NewVerificationRepo(db *sql.DB) *VerificationRepo {
	return &VerificationRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewVerificationRepoWithTimeProvider creates a new VerificationRepo with a custom time provider.
func NewVerificationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *VerificationRepo {
	return &VerificationRepo{DB: db, timeProvider: tp}
}

// Get retrieves the verification record owned by an actor.
func (r *VerificationRepo) Get(ctx context.Context, ownerActorID string) (*model.Verification, error) {
	if err := checkID("get verification", "verification", ownerActorID); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.Verification](ctx, r.DB,
		`SELECT `+verificationColumns+` FROM verifications WHERE owner_actor_id = $1`, ownerActorID)
	if err != nil {
		return nil, dbErr("get verification", "verification", err)
	}
	return out, nil
}

// List returns the review queue, oldest first.
func (r *VerificationRepo) List(ctx context.Context, opts model.VerificationListOptions) ([]*model.Verification, error) {
	limit, offset := page(opts.Limit, opts.Offset)
	status := opts.Status
	if status == "" {
		status = model.VerificationPending
	}
	qopts := []database.ListQueryOption{
		database.WithColumns(verificationColumnList...),
		database.WithCondition(database.WhereCond("status", database.Equal, status)),
		database.WithOrderBy("created_at", sortAscending),
		database.WithThenBy("id", sortAscending),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Kind != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("kind", database.Equal, *opts.Kind)))
	}
	q, args := database.BuildListQuery(database.NewListQueryOptions("verifications", qopts...))
	out, err := pgxutil.QueryAll[model.Verification](ctx, r.DB, q, args...)
	if err != nil {
		return nil, dbErr("list verifications", "verification", err)
	}
	return out, nil
}

// Decide records the decision on a pending verification. Approval activates
// the owning actor in the same transaction.
func (r *VerificationRepo) Decide(ctx context.Context, d model.VerificationDecision) (*model.Verification, error) {
	if err := checkID("decide verification", "verification", d.OwnerActorID); err != nil {
		return nil, err
	}
	now := r.timeProvider.Now()
	var out model.Verification
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		v, err := pgxutil.CollectOne[model.Verification](ctx, tx, `
			UPDATE verifications
			SET status = $2, verified_by = $3, verified_at = $4, rejection_reason = $5,
			    notes = COALESCE($6, notes), updated_at = $4
			WHERE owner_actor_id = $1 AND status = 'pending'
			RETURNING `+verificationColumns,
			d.OwnerActorID, d.Status, d.AdminID, now, d.Reason, d.Notes)
		if err != nil {
			return err
		}
		out = v
		if d.Status != model.VerificationApproved {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`UPDATE actors SET active = TRUE, updated_at = $2 WHERE id = $1`, d.OwnerActorID, now); err != nil {
			return fmt.Errorf("activate actor: %w", err)
		}
		return nil
	}})
	if err != nil {
		return nil, condErr("decide verification", err)
	}
	return &out, nil
}

var verificationColumnList = []string{
	"owner_actor_id", "kind", "status", "verified_by", "verified_at",
	"rejection_reason", "notes", "domain_match", "created_at", "updated_at",
}
