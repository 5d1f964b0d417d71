package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementhub/placement-engine/internal/domain/model"
)

func TestProfileEligibility_Facts(t *testing.T) {
	e, err := NewProfileEligibility(EligibilityPaths{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		fields   map[string]any
		branch   *string
		cgpa     *float64
		gradYear *int
	}{
		{name: "typed values", fields: academic("CSE", 8.4, 2026), branch: ptr("CSE"), cgpa: ptr(8.4), gradYear: ptr(2026)},
		{
			name: "numeric strings",
			fields: map[string]any{"academic": map[string]any{
				"cgpa": " 7.25 ", "graduation_year": "2025",
			}},
			cgpa:     ptr(7.25),
			gradYear: ptr(2025),
		},
		{
			name:   "wrong types are missing",
			fields: map[string]any{"academic": map[string]any{"branch": 12.0, "cgpa": "n/a", "graduation_year": 2025.5}},
		},
		{name: "no academic section", fields: map[string]any{"personal": map[string]any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := e.Facts(tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.branch, facts.Branch)
			assert.Equal(t, tt.cgpa, facts.CGPA)
			assert.Equal(t, tt.gradYear, facts.GradYear)
		})
	}
}

func TestProfileEligibility_Evaluate(t *testing.T) {
	e, err := NewProfileEligibility(EligibilityPaths{})
	require.NoError(t, err)
	fields := academic("Computer  Science", 7.9, 2026)

	res, err := e.Evaluate(nil, model.Eligibility{})
	require.NoError(t, err)
	assert.True(t, res.Eligible)

	res, err = e.Evaluate(fields, model.Eligibility{Branches: []string{"computer science"}, MinCGPA: ptr(7.5)})
	require.NoError(t, err)
	assert.True(t, res.Eligible)

	res, err = e.Evaluate(fields, model.Eligibility{MinCGPA: ptr(8.0)})
	require.NoError(t, err)
	assert.Equal(t, "cgpa", res.Failed)

	res, err = e.Evaluate(fields, model.Eligibility{GradYears: []int{2024, 2025}})
	require.NoError(t, err)
	assert.Equal(t, "grad_year", res.Failed)
}

func TestProfileEligibility_CustomPaths(t *testing.T) {
	e, err := NewProfileEligibility(EligibilityPaths{CGPA: "grades.gpa"})
	require.NoError(t, err)
	facts, err := e.Facts(map[string]any{"grades": map[string]any{"gpa": 9.1}})
	require.NoError(t, err)
	require.NotNil(t, facts.CGPA)
	assert.InDelta(t, 9.1, *facts.CGPA, 1e-9)

	_, err = NewProfileEligibility(EligibilityPaths{Branch: "academic.["})
	assert.Error(t, err)
}
