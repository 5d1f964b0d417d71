package ports

import (
	"context"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

// ProfileStore reads role-specific profile documents.
type ProfileStore interface {
	// GetProfileFields returns the profile document for the actor. It returns a
	// NotFound AppError when the role record has not been created.
	GetProfileFields(ctx context.Context, actorID string, role domainauth.Role) (map[string]any, error)
}

// EligibilityEvaluator decides whether a profile satisfies a posting's filters.
type EligibilityEvaluator interface {
	Evaluate(fields map[string]any, criteria model.Eligibility) (model.EligibilityResult, error)
}

// NotificationPublisher pushes persisted notifications to live subscribers.
// Publishing is best effort and never fails the caller.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *model.Notification)
}
