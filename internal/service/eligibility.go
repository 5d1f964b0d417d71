package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jmespath-community/go-jmespath"

	"github.com/placementhub/placement-engine/internal/domain/model"
	"github.com/placementhub/placement-engine/internal/ports"
)

// Default profile paths read for eligibility checks.
const (
	DefaultBranchPath   = "academic.branch"
	DefaultCGPAPath     = "academic.cgpa"
	DefaultGradYearPath = "academic.graduation_year"
)

// EligibilityPaths are the JMESPath expressions locating each applicant fact.
type EligibilityPaths struct {
	Branch   string
	CGPA     string
	GradYear string
}

// ProfileEligibility evaluates posting filters against profile documents.
type ProfileEligibility struct {
	branch   string
	cgpa     string
	gradYear string
}

var _ ports.EligibilityEvaluator = (*ProfileEligibility)(nil)

// NewProfileEligibility validates the configured paths. Blank paths use the defaults.
func NewProfileEligibility(paths EligibilityPaths) (*ProfileEligibility, error) {
	compile := func(expr, fallback string) (string, error) {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			expr = fallback
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return "", fmt.Errorf("compile eligibility path %q: %w", expr, err)
		}
		return expr, nil
	}
	branch, err := compile(paths.Branch, DefaultBranchPath)
	if err != nil {
		return nil, err
	}
	cgpa, err := compile(paths.CGPA, DefaultCGPAPath)
	if err != nil {
		return nil, err
	}
	gradYear, err := compile(paths.GradYear, DefaultGradYearPath)
	if err != nil {
		return nil, err
	}
	return &ProfileEligibility{branch: branch, cgpa: cgpa, gradYear: gradYear}, nil
}

// Evaluate extracts the applicant facts from fields and checks criteria.
func (e *ProfileEligibility) Evaluate(fields map[string]any, criteria model.Eligibility) (model.EligibilityResult, error) {
	if criteria.Empty() {
		return model.EligibilityResult{Eligible: true}, nil
	}
	facts, err := e.Facts(fields)
	if err != nil {
		return model.EligibilityResult{}, err
	}
	return criteria.Check(facts), nil
}

// Facts extracts the applicant facts. Values of the wrong type are treated as missing.
func (e *ProfileEligibility) Facts(fields map[string]any) (model.ApplicantFacts, error) {
	var facts model.ApplicantFacts

	v, err := jmespath.Search(e.branch, fields)
	if err != nil {
		return facts, fmt.Errorf("search branch: %w", err)
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		facts.Branch = &s
	}

	v, err = jmespath.Search(e.cgpa, fields)
	if err != nil {
		return facts, fmt.Errorf("search cgpa: %w", err)
	}
	if f, ok := toFloat(v); ok {
		facts.CGPA = &f
	}

	v, err = jmespath.Search(e.gradYear, fields)
	if err != nil {
		return facts, fmt.Errorf("search graduation year: %w", err)
	}
	if f, ok := toFloat(v); ok && f == math.Trunc(f) {
		y := int(f)
		facts.GradYear = &y
	}
	return facts, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
