package authroles

import (
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/ports"
)

var _ ports.RoleMapper = StaticRoleMapper{}

// StaticRoleMapper maps identity-provider groups to roles by exact membership.
// Admin membership wins over every other group.
type StaticRoleMapper struct {
	AdminGroup     string
	RecruiterGroup string
	AlumniGroup    string
	ApplicantGroup string
}

// Map returns the highest-precedence role whose group appears in groups.
func (m StaticRoleMapper) Map(groups []string) (domainauth.Role, bool) {
	order := []struct {
		group string
		role  domainauth.Role
	}{
		{m.AdminGroup, domainauth.RoleAdmin},
		{m.RecruiterGroup, domainauth.RoleRecruiter},
		{m.AlumniGroup, domainauth.RoleAlumni},
		{m.ApplicantGroup, domainauth.RoleApplicant},
	}
	for _, o := range order {
		if o.group == "" {
			continue
		}
		for _, g := range groups {
			if g == o.group {
				return o.role, true
			}
		}
	}
	return "", false
}
