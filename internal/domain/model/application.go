//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const (
	maxCoverLetterLen = 10000
	maxNotesLen       = 5000
)

// ApplicationStatus is the recruiter-driven state of an application.
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationOnHold      ApplicationStatus = "on-hold"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationSelected    ApplicationStatus = "selected"
)

// applicationTransitions lists, per state, the states a recruiter may move to.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:     {ApplicationShortlisted, ApplicationOnHold, ApplicationRejected},
	ApplicationShortlisted: {ApplicationSelected, ApplicationRejected, ApplicationOnHold},
	ApplicationOnHold:      {ApplicationShortlisted, ApplicationRejected, ApplicationSelected},
	ApplicationRejected:    nil,
	ApplicationSelected:    nil,
}

// Valid reports whether the status is supported.
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// ParseApplicationStatus normalizes a status string. "on_hold" and "onhold" are accepted for on-hold.
func ParseApplicationStatus(v string) (ApplicationStatus, bool) {
	n := strings.ToLower(strings.TrimSpace(v))
	switch n {
	case "on_hold", "onhold":
		n = string(ApplicationOnHold)
	}
	s := ApplicationStatus(n)
	return s, s.Valid()
}

// Terminal reports whether no further recruiter action is possible from s.
func (s ApplicationStatus) Terminal() bool {
	return s.Valid() && len(applicationTransitions[s]) == 0
}

// CanTransitionTo reports whether the transition table permits s -> next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return slices.Contains(applicationTransitions[s], next)
}

// AllowedFrom returns the states from which next may be entered.
func AllowedFrom(next ApplicationStatus) []ApplicationStatus {
	var out []ApplicationStatus
	for _, from := range []ApplicationStatus{
		ApplicationApplied, ApplicationShortlisted, ApplicationOnHold, ApplicationRejected, ApplicationSelected,
	} {
		if from.CanTransitionTo(next) {
			out = append(out, from)
		}
	}
	return out
}

// TimestampColumn names the column stamped when an application enters s.
func (s ApplicationStatus) TimestampColumn() string {
	switch s {
	case ApplicationApplied:
		return "applied_at"
	case ApplicationShortlisted:
		return "shortlisted_at"
	case ApplicationOnHold:
		return "on_hold_at"
	case ApplicationRejected:
		return "rejected_at"
	case ApplicationSelected:
		return "selected_at"
	default:
		return ""
	}
}

// NotificationKind returns the notification sent to the applicant on entering s.
func (s ApplicationStatus) NotificationKind() NotificationKind {
	return NotificationKind("application_" + strings.ReplaceAll(string(s), "-", "_"))
}

// Application links an applicant to a job posting.
// RecruiterID is the posting owner at creation time.
type Application struct {
	ID             string            `json:"id"                        db:"id"`
	JobID          string            `json:"job_id"                    db:"job_id"`
	ApplicantID    string            `json:"applicant_id"              db:"applicant_id"`
	RecruiterID    string            `json:"recruiter_id"              db:"recruiter_id"`
	Status         ApplicationStatus `json:"status"                    db:"status"`
	ScoreSnapshot  *int              `json:"score_snapshot,omitempty"  db:"score_snapshot"`
	CoverLetter    *string           `json:"cover_letter,omitempty"    db:"cover_letter"`
	RecruiterNotes *string           `json:"recruiter_notes,omitempty" db:"recruiter_notes"`
	AppliedAt      time.Time         `json:"applied_at"                db:"applied_at"`
	ShortlistedAt  *time.Time        `json:"shortlisted_at,omitempty"  db:"shortlisted_at"`
	OnHoldAt       *time.Time        `json:"on_hold_at,omitempty"      db:"on_hold_at"`
	RejectedAt     *time.Time        `json:"rejected_at,omitempty"     db:"rejected_at"`
	SelectedAt     *time.Time        `json:"selected_at,omitempty"     db:"selected_at"`
	UpdatedAt      time.Time         `json:"updated_at"                db:"updated_at"`
}

// ApplyRequest is the applicant's submission.
type ApplyRequest struct {
	JobID       string  `json:"job_id"`
	CoverLetter *string `json:"cover_letter,omitempty"`
}

// Validate trims and checks the request.
func (r *ApplyRequest) Validate() error {
	r.JobID = strings.TrimSpace(r.JobID)
	if r.JobID == "" {
		return apperrors.ValidationField("job_id", "job_id is required")
	}
	if r.CoverLetter != nil {
		c := strings.TrimSpace(*r.CoverLetter)
		if c == "" {
			r.CoverLetter = nil
		} else if utf8.RuneCountInString(c) > maxCoverLetterLen {
			return apperrors.ValidationField("cover_letter", "cover_letter is too long")
		} else {
			r.CoverLetter = &c
		}
	}
	return nil
}

// CreateApplicationParams is the storage-level input for Apply.
type CreateApplicationParams struct {
	JobID         string
	ApplicantID   string
	CoverLetter   *string
	ScoreSnapshot *int
}

// StatusChange is a recruiter's request to move one application.
type StatusChange struct {
	ApplicationID string
	RecruiterID   string
	Status        ApplicationStatus
	Notes         *string
}

// Validate checks the change is well formed. Whether the target is reachable
// is decided against the stored status, so applied passes here.
func (c *StatusChange) Validate() error {
	if strings.TrimSpace(c.ApplicationID) == "" {
		return apperrors.ValidationField("application_id", "application_id is required")
	}
	if !c.Status.Valid() {
		return apperrors.ValidationField("status", "invalid status")
	}
	return validateNotes(c.Notes)
}

func validateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLen {
		return apperrors.ValidationField("notes", "notes are too long")
	}
	return nil
}

// BulkStatusRequest applies one status to many applications.
type BulkStatusRequest struct {
	ApplicationIDs []string `json:"application_ids"`
	Status         string   `json:"status"`
	Notes          *string  `json:"notes,omitempty"`
}

// BulkOutcome is the per-id result category of a bulk transition.
type BulkOutcome string

const (
	BulkOutcomeApplied BulkOutcome = "applied"
	BulkOutcomeSkipped BulkOutcome = "skipped"
	BulkOutcomeFailed  BulkOutcome = "failed"
)

// BulkItemResult reports what happened to one id in a bulk transition.
type BulkItemResult struct {
	ApplicationID string             `json:"application_id"`
	Outcome       BulkOutcome        `json:"outcome"`
	Reason        string             `json:"reason,omitempty"`
	Message       string             `json:"message,omitempty"`
	Application   *Application       `json:"application,omitempty"`
	PreviousState *ApplicationStatus `json:"previous_status,omitempty"`
}

// BulkStatusResult is the ordered outcome list of a bulk transition.
type BulkStatusResult struct {
	Status  ApplicationStatus `json:"status"`
	Results []BulkItemResult  `json:"results"`
	Applied int               `json:"applied"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
}

// ApplicationListOptions controls paging and filtering for application listings.
type ApplicationListOptions struct {
	JobID       *string
	ApplicantID *string
	Status      *ApplicationStatus
	// After resumes a newest-first listing strictly past the given row.
	After       *ApplicationCursor
	Limit       int
	Offset      int
}

// ApplicationCursor is the (applied_at, id) position of a listed application.
type ApplicationCursor struct {
	AppliedAt time.Time
	ID        string
}

// CursorOf returns the listing position of a.
func CursorOf(a *Application) *ApplicationCursor {
	return &ApplicationCursor{AppliedAt: a.AppliedAt, ID: a.ID}
}
