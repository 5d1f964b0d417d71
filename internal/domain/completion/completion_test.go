package completion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementhub/placement-engine/internal/domain/auth"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestTablesSumToHundred(t *testing.T) {
	t.Parallel()
	for _, role := range []auth.Role{auth.RoleApplicant, auth.RoleRecruiter, auth.RoleAlumni} {
		tbl, ok := TableFor(role)
		require.True(t, ok, role)
		require.NoError(t, tbl.validate())
	}
	_, ok := TableFor(auth.RoleAdmin)
	assert.False(t, ok)
}

func TestScore_Applicant(t *testing.T) {
	t.Parallel()

	full := decode(t, `{
		"personal": {"full_name": "Asha", "phone": "1", "date_of_birth": "2003-01-01", "gender": "f", "address": "x"},
		"academic": {"college": "c", "degree": "b", "branch": "cs", "cgpa": 8.5, "graduation_year": 2025},
		"skills": ["go"], "projects": [{"name": "p"}], "internships": [{"org": "o"}],
		"certifications": ["aws"],
		"social": {"linkedin": "l", "github": "g", "portfolio": "p"}
	}`)
	assert.Equal(t, 100, Score(auth.RoleApplicant, full))

	partial := decode(t, `{
		"personal": {"full_name": "Asha", "phone": " ", "date_of_birth": null, "gender": "f", "address": "x"},
		"academic": {"college": "c", "degree": "b", "branch": "cs", "cgpa": 0, "graduation_year": 2025},
		"skills": [], "projects": {}
	}`)
	// personal 3/5 of 20 = 12, academic 5/5 of 25 = 25 (zero is a value)
	assert.Equal(t, 37, Score(auth.RoleApplicant, partial))
}

func TestScore_RecruiterAndAlumni(t *testing.T) {
	t.Parallel()

	rec := decode(t, `{"company": {"name": "Acme", "website": "acme.com", "industry": "x"}, "contact": {"email": "hr@acme.com"}}`)
	// company 3/6 of 60 = 30, contact 1/4 of 40 = 10
	assert.Equal(t, 40, Score(auth.RoleRecruiter, rec))

	alum := decode(t, `{"role": {"company": "a", "designation": "b", "experience_years": 3}, "links": {"linkedin": "l"}}`)
	// role 40, links 15
	assert.Equal(t, 55, Score(auth.RoleAlumni, alum))
}

func TestScore_EdgeCases(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 100, Score(auth.RoleAdmin, nil))
	assert.Equal(t, 0, Score(auth.RoleApplicant, nil))
	assert.Equal(t, 0, Score(auth.Role("guest"), map[string]any{"x": 1}))
}

func TestScore_Deterministic(t *testing.T) {
	t.Parallel()
	doc := decode(t, `{"company": {"name": "Acme"}, "contact": {"name": "Ravi", "phone": "9"}}`)
	first := Score(auth.RoleRecruiter, doc)
	for range 10 {
		assert.Equal(t, first, Score(auth.RoleRecruiter, doc))
	}
}

func TestBreakdown(t *testing.T) {
	t.Parallel()
	tbl, _ := TableFor(auth.RoleRecruiter)
	b := tbl.Breakdown(decode(t, `{"contact": {"name": "a", "email": "b", "phone": "c", "designation": "d"}}`))
	assert.Equal(t, map[string]int{"company": 0, "contact": 40}, b)
}

func TestFilled(t *testing.T) {
	t.Parallel()
	assert.False(t, Filled(nil))
	assert.False(t, Filled("  "))
	assert.False(t, Filled([]any{}))
	assert.False(t, Filled(map[string]any{}))
	assert.True(t, Filled(false))
	assert.True(t, Filled(0.0))
	assert.True(t, Filled("x"))
}
