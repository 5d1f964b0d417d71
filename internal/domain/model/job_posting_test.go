package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

func TestJobPostingFields_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    JobPostingFields
		field string
	}{
		{name: "missing title", in: JobPostingFields{Description: "d", Location: "l"}, field: "title"},
		{name: "missing description", in: JobPostingFields{Title: "t", Location: "l"}, field: "description"},
		{name: "missing location", in: JobPostingFields{Title: "t", Description: "d", Location: "  "}, field: "location"},
		{name: "bad job type", in: JobPostingFields{Title: "t", Description: "d", Location: "l", JobType: "gig"}, field: "job_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.in.Validate()
			require.True(t, apperrors.IsValidation(err), "got %v", err)
			assert.Equal(t, tt.field, apperrors.GetField(err))
		})
	}
}

func TestJobPostingFields_Normalize(t *testing.T) {
	t.Parallel()

	f := JobPostingFields{
		Title:       " Backend Engineer ",
		Description: "Build things",
		Location:    "Pune",
		JobType:     "Part-Time",
		Tags:        []string{"Go", "go ", "", "SQL"},
	}
	require.NoError(t, f.Validate())
	assert.Equal(t, "Backend Engineer", f.Title)
	assert.Equal(t, JobTypePartTime, f.JobType)
	assert.Equal(t, []string{"go", "sql"}, f.Tags)

	f = JobPostingFields{Title: "t", Description: "d", Location: "l"}
	require.NoError(t, f.Validate())
	assert.Equal(t, JobTypeFullTime, f.JobType)
}

func TestApprovalStatus(t *testing.T) {
	t.Parallel()
	assert.True(t, ApprovalPending.CanReview())
	assert.False(t, ApprovalApproved.CanReview())
	assert.False(t, ApprovalRejected.CanReview())
	assert.False(t, ApprovalApproved.Editable())
	assert.True(t, ApprovalRejected.Editable())

	s, ok := ParseApprovalStatus(" Approved")
	assert.True(t, ok)
	assert.Equal(t, ApprovalApproved, s)
}

func TestJobPosting_Open(t *testing.T) {
	t.Parallel()
	assert.True(t, (&JobPosting{ApprovalStatus: ApprovalApproved, Active: true}).Open())
	assert.False(t, (&JobPosting{ApprovalStatus: ApprovalApproved, Active: false}).Open())
	assert.False(t, (&JobPosting{ApprovalStatus: ApprovalPending, Active: true}).Open())
}

func TestJobReview_Validate(t *testing.T) {
	t.Parallel()
	r := JobReview{Status: ApprovalRejected}
	assert.Equal(t, "reason", apperrors.GetField(r.Validate()))

	reason := "  salary missing "
	r = JobReview{Status: ApprovalRejected, Reason: &reason}
	require.NoError(t, r.Validate())
	assert.Equal(t, "salary missing", *r.Reason)

	r = JobReview{Status: ApprovalPending}
	assert.True(t, apperrors.IsValidation(r.Validate()))
}
