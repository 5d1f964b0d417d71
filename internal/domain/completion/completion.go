// Package completion scores how complete a role's profile document is.
// Scoring is pure: the same role and fields always produce the same percentage.
package completion

import (
	"fmt"
	"math"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/placementhub/placement-engine/internal/domain/auth"
)

// Section is a weighted group of profile fields. Each field is a JMESPath
// expression evaluated against the profile document.
type Section struct {
	Name   string
	Weight int
	Fields []string
}

// Table is the ordered set of sections for one role. Weights sum to 100.
type Table []Section

var tables = map[auth.Role]Table{
	auth.RoleApplicant: {
		{Name: "personal", Weight: 20, Fields: []string{
			"personal.full_name", "personal.phone", "personal.date_of_birth", "personal.gender", "personal.address",
		}},
		{Name: "academic", Weight: 25, Fields: []string{
			"academic.college", "academic.degree", "academic.branch", "academic.cgpa", "academic.graduation_year",
		}},
		{Name: "skills", Weight: 15, Fields: []string{"skills"}},
		{Name: "projects", Weight: 15, Fields: []string{"projects"}},
		{Name: "internships", Weight: 10, Fields: []string{"internships"}},
		{Name: "certifications", Weight: 10, Fields: []string{"certifications"}},
		{Name: "social", Weight: 5, Fields: []string{"social.linkedin", "social.github", "social.portfolio"}},
	},
	auth.RoleRecruiter: {
		{Name: "company", Weight: 60, Fields: []string{
			"company.name", "company.website", "company.industry", "company.size", "company.description", "company.location",
		}},
		{Name: "contact", Weight: 40, Fields: []string{
			"contact.name", "contact.email", "contact.phone", "contact.designation",
		}},
	},
	auth.RoleAlumni: {
		{Name: "personal", Weight: 30, Fields: []string{
			"personal.full_name", "personal.branch", "personal.graduation_year", "personal.phone",
		}},
		{Name: "role", Weight: 40, Fields: []string{"role.company", "role.designation", "role.experience_years"}},
		{Name: "links", Weight: 30, Fields: []string{"links.linkedin", "links.portfolio"}},
	},
}

func init() {
	for role, t := range tables {
		if err := t.validate(); err != nil {
			panic(fmt.Sprintf("completion table %s: %v", role, err))
		}
	}
}

// TableFor returns the weight table for role. Admin has no table and always scores 100.
func TableFor(role auth.Role) (Table, bool) {
	t, ok := tables[role]
	return t, ok
}

// Score returns the completion percentage in [0,100] for a profile document.
// fields is expected in its JSON-decoded shape (maps, slices of any, float64 numbers).
func Score(role auth.Role, fields map[string]any) int {
	if role == auth.RoleAdmin {
		return 100
	}
	t, ok := tables[role]
	if !ok {
		return 0
	}
	return t.Score(fields)
}

// Score applies the table to a profile document.
func (t Table) Score(fields map[string]any) int {
	if len(fields) == 0 {
		return 0
	}
	var total float64
	for _, s := range t {
		total += float64(s.Weight) * s.fraction(fields)
	}
	return clamp(int(math.Round(total)))
}

// Breakdown reports each section's earned points, rounded.
func (t Table) Breakdown(fields map[string]any) map[string]int {
	out := make(map[string]int, len(t))
	for _, s := range t {
		out[s.Name] = int(math.Round(float64(s.Weight) * s.fraction(fields)))
	}
	return out
}

func (s Section) fraction(fields map[string]any) float64 {
	if len(s.Fields) == 0 {
		return 0
	}
	filled := 0
	for _, expr := range s.Fields {
		v, err := jmespath.Search(expr, fields)
		if err == nil && Filled(v) {
			filled++
		}
	}
	return float64(filled) / float64(len(s.Fields))
}

func (t Table) validate() error {
	sum := 0
	for _, s := range t {
		sum += s.Weight
		for _, expr := range s.Fields {
			if _, err := jmespath.Compile(expr); err != nil {
				return fmt.Errorf("section %s field %q: %w", s.Name, expr, err)
			}
		}
	}
	if sum != 100 {
		return fmt.Errorf("weights sum to %d, want 100", sum)
	}
	return nil
}

// Filled reports whether a value counts as provided: non-null, not a blank
// string, and not an empty list or object.
func Filled(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	case []string:
		return len(x) > 0
	default:
		return true
	}
}

func clamp(v int) int {
	return max(0, min(100, v))
}
