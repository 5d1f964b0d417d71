//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const (
	maxJobTitleLen       = 255
	maxJobDescriptionLen = 20000
	maxJobTags           = 20
)

// ApprovalStatus is the admin review state of a job posting.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether the status is supported.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// ParseApprovalStatus normalizes a status string and reports whether it is supported.
func ParseApprovalStatus(v string) (ApprovalStatus, bool) {
	s := ApprovalStatus(strings.ToLower(strings.TrimSpace(v)))
	return s, s.Valid()
}

// CanReview reports whether an administrator may approve or reject from s.
func (s ApprovalStatus) CanReview() bool { return s == ApprovalPending }

// Editable reports whether the owning recruiter may edit a posting in s.
func (s ApprovalStatus) Editable() bool { return s != ApprovalApproved }

// JobType classifies a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
)

// Valid reports whether the job type is supported.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract:
		return true
	default:
		return false
	}
}

func normalizeJobType(t JobType) JobType {
	n := JobType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(t))), "-", "_"))
	if n == "" {
		return JobTypeFullTime
	}
	return n
}

// JobPosting is a recruiter-owned listing that an administrator must approve.
type JobPosting struct {
	ID              string         `json:"id"                         db:"id"`
	RecruiterID     string         `json:"recruiter_id"               db:"recruiter_id"`
	Title           string         `json:"title"                      db:"title"`
	Description     string         `json:"description"                db:"description"`
	Location        string         `json:"location"                   db:"location"`
	JobType         JobType        `json:"job_type"                   db:"job_type"`
	Salary          *string        `json:"salary,omitempty"           db:"salary"`
	Tags            []string       `json:"tags"                       db:"tags"`
	Eligibility     Eligibility    `json:"eligibility"                db:"eligibility"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"            db:"approval_status"`
	ApprovedBy      *string        `json:"approved_by,omitempty"      db:"approved_by"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"      db:"approved_at"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	Active          bool           `json:"active"                     db:"active"`
	Deadline        *time.Time     `json:"deadline,omitempty"         db:"deadline"`
	CreatedAt       time.Time      `json:"created_at"                 db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"                 db:"updated_at"`
}

// Open reports whether applicants can see and apply to the posting.
func (j *JobPosting) Open() bool {
	return j.ApprovalStatus == ApprovalApproved && j.Active
}

// JobPostingFields carries the recruiter-editable content of a posting.
type JobPostingFields struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	JobType     JobType     `json:"job_type,omitempty"`
	Salary      *string     `json:"salary,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Eligibility Eligibility `json:"eligibility"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
}

// Normalize trims text fields and deduplicates tags.
func (f *JobPostingFields) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Location = strings.TrimSpace(f.Location)
	f.JobType = normalizeJobType(f.JobType)
	if f.Salary != nil {
		s := strings.TrimSpace(*f.Salary)
		if s == "" {
			f.Salary = nil
		} else {
			f.Salary = &s
		}
	}
	seen := make(map[string]struct{}, len(f.Tags))
	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	f.Tags = tags
	f.Eligibility.Normalize()
}

// Validate normalizes and checks the fields. Title, description and location are required.
func (f *JobPostingFields) Validate() error {
	f.Normalize()
	if f.Title == "" {
		return apperrors.ValidationField("title", "title is required")
	}
	if utf8.RuneCountInString(f.Title) > maxJobTitleLen {
		return apperrors.ValidationField("title", "title cannot exceed 255 characters")
	}
	if f.Description == "" {
		return apperrors.ValidationField("description", "description is required")
	}
	if utf8.RuneCountInString(f.Description) > maxJobDescriptionLen {
		return apperrors.ValidationField("description", "description is too long")
	}
	if f.Location == "" {
		return apperrors.ValidationField("location", "location is required")
	}
	if !f.JobType.Valid() {
		return apperrors.ValidationField("job_type", "invalid job_type")
	}
	if len(f.Tags) > maxJobTags {
		return apperrors.ValidationField("tags", "at most 20 tags are allowed")
	}
	return f.Eligibility.Validate()
}

// JobReview is an administrator's decision on a pending posting.
type JobReview struct {
	JobID   string
	AdminID string
	Status  ApprovalStatus
	Reason  *string
}

// Validate checks the review. A rejection must carry a reason.
func (r *JobReview) Validate() error {
	if r.Status != ApprovalApproved && r.Status != ApprovalRejected {
		return apperrors.ValidationField("status", "review must approve or reject")
	}
	if r.Status == ApprovalRejected {
		if r.Reason == nil || strings.TrimSpace(*r.Reason) == "" {
			return apperrors.ValidationField("reason", "rejection reason is required")
		}
		reason := strings.TrimSpace(*r.Reason)
		r.Reason = &reason
	}
	return nil
}

// JobListOptions controls paging and filtering for posting listings.
type JobListOptions struct {
	RecruiterID *string
	Status      *ApprovalStatus
	// OpenOnly restricts results to approved and active postings.
	OpenOnly bool
	Q        *string
	Limit    int
	Offset   int
}
