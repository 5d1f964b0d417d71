package auth

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// Capability names a family of gated operations.
type Capability string

const (
	CapManageOwnProfile    Capability = "profile:manage_own"
	CapBrowseJobs          Capability = "jobs:browse"
	CapApply               Capability = "applications:apply"
	CapWithdraw            Capability = "applications:withdraw"
	CapManageJobPostings   Capability = "jobs:manage_own"
	CapReviewApplications  Capability = "applications:review"
	CapReviewVerifications Capability = "verifications:review"
	CapReviewJobPostings   Capability = "jobs:review"
	CapReadNotifications   Capability = "notifications:read"
)

// capabilities is the fixed per-role capability table.
var capabilities = map[Role][]Capability{
	RoleApplicant: {
		CapManageOwnProfile, CapBrowseJobs, CapApply, CapWithdraw, CapReadNotifications,
	},
	RoleRecruiter: {
		CapManageOwnProfile, CapManageJobPostings, CapReviewApplications, CapReadNotifications,
	},
	RoleAdmin: {
		CapManageOwnProfile, CapBrowseJobs, CapReviewVerifications, CapReviewJobPostings, CapReadNotifications,
	},
	RoleAlumni: {
		CapManageOwnProfile, CapBrowseJobs, CapReadNotifications,
	},
}

// Can reports whether role r holds capability c.
func (r Role) Can(c Capability) bool {
	return slices.Contains(capabilities[r], c)
}

// Authorize permits the call when the actor's role is one of roles.
// It must run after identity resolution and before any state-machine logic.
func Authorize(actor Actor, roles ...Role) error {
	if slices.Contains(roles, actor.Role) {
		return nil
	}
	return apperrors.Forbidden(forbiddenMessage(roles))
}

// AuthorizeCapability permits the call when the actor's role holds c.
func AuthorizeCapability(actor Actor, c Capability) error {
	if actor.Role.Can(c) {
		return nil
	}
	return apperrors.Forbidden(fmt.Sprintf("%s role may not perform %s", actor.Role, c))
}

func forbiddenMessage(roles []Role) string {
	switch len(roles) {
	case 0:
		return "operation not permitted"
	case 1:
		return fmt.Sprintf("%s role required", roles[0])
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return fmt.Sprintf("one of roles [%s] required", strings.Join(names, ", "))
}
