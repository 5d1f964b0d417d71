// Package testutil provides database fixtures and helpers for placement engine tests.
package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActorBuilder provides a fluent interface for seeding an actor with its role records.
type ActorBuilder struct {
	email        string
	name         string
	role         string
	active       bool
	fields       map[string]any
	verification string
}

// NewActor returns a builder for an active applicant with an empty profile.
func NewActor() *ActorBuilder {
	return &ActorBuilder{
		email:  fmt.Sprintf("user-%s@example.edu", uuid.NewString()[:8]),
		name:   "Test User",
		role:   "applicant",
		active: true,
		fields: map[string]any{},
	}
}

// WithEmail sets the email.
func (b *ActorBuilder) WithEmail(email string) *ActorBuilder {
	b.email = email
	return b
}

// WithRole sets the role. Recruiter and alumni actors get a pending verification
// and start inactive unless WithVerification or WithActive override it.
func (b *ActorBuilder) WithRole(role string) *ActorBuilder {
	b.role = role
	if role == "recruiter" || role == "alumni" {
		b.verification = "pending"
		b.active = false
	}
	return b
}

// WithActive sets the active flag.
func (b *ActorBuilder) WithActive(active bool) *ActorBuilder {
	b.active = active
	return b
}

// WithVerification sets the verification status; an empty status seeds none.
func (b *ActorBuilder) WithVerification(status string) *ActorBuilder {
	b.verification = status
	if status == "approved" {
		b.active = true
	}
	return b
}

// WithProfile sets the profile document.
func (b *ActorBuilder) WithProfile(fields map[string]any) *ActorBuilder {
	b.fields = fields
	return b
}

// Seed inserts the actor and returns its id.
func (b *ActorBuilder) Seed(t TestingTB, db *sql.DB) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc, err := json.Marshal(b.fields)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	var id string
	if err := db.QueryRowContext(ctx,
		`INSERT INTO actors (email, display_name, role, active) VALUES ($1, $2, $3, $4) RETURNING id`,
		b.email, b.name, b.role, b.active,
	).Scan(&id); err != nil {
		t.Fatalf("seed actor: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO profiles (actor_id, role, fields) VALUES ($1, $2, $3::jsonb)`, id, b.role, string(doc),
	); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if b.verification != "" {
		var reason *string
		if b.verification == "rejected" {
			r := "seeded rejection"
			reason = &r
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO verifications (owner_actor_id, kind, status, rejection_reason) VALUES ($1, $2, $3, $4)`,
			id, b.role, b.verification, reason,
		); err != nil {
			t.Fatalf("seed verification: %v", err)
		}
	}
	return id
}

// JobBuilder provides a fluent interface for seeding a job posting.
type JobBuilder struct {
	recruiterID string
	title       string
	status      string
	active      bool
	eligibility map[string]any
}

// NewJob returns a builder for an approved, active posting owned by recruiterID.
func NewJob(recruiterID string) *JobBuilder {
	return &JobBuilder{
		recruiterID: recruiterID,
		title:       "Graduate Engineer",
		status:      "approved",
		active:      true,
		eligibility: map[string]any{},
	}
}

// WithStatus sets the approval status.
func (b *JobBuilder) WithStatus(status string) *JobBuilder {
	b.status = status
	return b
}

// WithActive sets the active flag.
func (b *JobBuilder) WithActive(active bool) *JobBuilder {
	b.active = active
	return b
}

// WithMinCGPA sets the minimum CGPA filter.
func (b *JobBuilder) WithMinCGPA(v float64) *JobBuilder {
	b.eligibility["min_cgpa"] = v
	return b
}

// Seed inserts the posting and returns its id.
func (b *JobBuilder) Seed(t TestingTB, db *sql.DB) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc, err := json.Marshal(b.eligibility)
	if err != nil {
		t.Fatalf("marshal eligibility: %v", err)
	}
	var id string
	if err := db.QueryRowContext(ctx, `
		INSERT INTO job_postings (recruiter_id, title, description, location, eligibility, approval_status, active)
		VALUES ($1, $2, 'Build things.', 'Bengaluru', $3::jsonb, $4, $5)
		RETURNING id`,
		b.recruiterID, b.title, string(doc), b.status, b.active,
	).Scan(&id); err != nil {
		t.Fatalf("seed job posting: %v", err)
	}
	return id
}
