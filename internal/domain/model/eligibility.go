//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"slices"
	"strings"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// Eligibility holds a posting's applicant filters. Empty filters admit everyone.
type Eligibility struct {
	Branches  []string `json:"branches,omitempty"`
	MinCGPA   *float64 `json:"min_cgpa,omitempty"`
	GradYears []int    `json:"grad_years,omitempty"`
}

// Normalize lowercases branches and drops blanks and duplicates.
func (e *Eligibility) Normalize() {
	out := make([]string, 0, len(e.Branches))
	for _, b := range e.Branches {
		b = normalizeBranch(b)
		if b != "" && !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	e.Branches = out
	slices.Sort(e.GradYears)
	e.GradYears = slices.Compact(e.GradYears)
}

// Validate checks the filter ranges.
func (e *Eligibility) Validate() error {
	if e.MinCGPA != nil && (*e.MinCGPA < 0 || *e.MinCGPA > 10) {
		return apperrors.ValidationField("eligibility.min_cgpa", "min_cgpa must be between 0 and 10")
	}
	for _, y := range e.GradYears {
		if y < 1900 || y > 2200 {
			return apperrors.ValidationField("eligibility.grad_years", "grad_years contains an invalid year")
		}
	}
	return nil
}

// Empty reports whether no filter is set.
func (e Eligibility) Empty() bool {
	return len(e.Branches) == 0 && e.MinCGPA == nil && len(e.GradYears) == 0
}

// ApplicantFacts are the profile attributes eligibility is judged on.
// A nil field means the profile does not supply it.
type ApplicantFacts struct {
	Branch   *string
	CGPA     *float64
	GradYear *int
}

// EligibilityResult explains the outcome of an eligibility check.
type EligibilityResult struct {
	Eligible bool
	// Failed names the first filter that was not met.
	Failed string
}

// Check evaluates the filters against facts. A filter that is set but whose
// fact is missing counts as not met.
func (e Eligibility) Check(f ApplicantFacts) EligibilityResult {
	if len(e.Branches) > 0 {
		if f.Branch == nil || !slices.Contains(e.Branches, normalizeBranch(*f.Branch)) {
			return EligibilityResult{Failed: "branch"}
		}
	}
	if e.MinCGPA != nil {
		if f.CGPA == nil || *f.CGPA < *e.MinCGPA {
			return EligibilityResult{Failed: "cgpa"}
		}
	}
	if len(e.GradYears) > 0 {
		if f.GradYear == nil || !slices.Contains(e.GradYears, *f.GradYear) {
			return EligibilityResult{Failed: "grad_year"}
		}
	}
	return EligibilityResult{Eligible: true}
}

func normalizeBranch(b string) string {
	return strings.Join(strings.Fields(strings.ToLower(b)), " ")
}
