package httpx

import (
	"context"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
)

// actorKey is an unexported context key type to avoid collisions across packages.
type actorKey struct{}

// tokenKey carries the raw bearer token for logout.
type tokenKey struct{}

// SetActorInContext returns a child context that carries the resolved actor and its token.
func SetActorInContext(ctx context.Context, actor domainauth.Actor, token string) context.Context {
	ctx = context.WithValue(ctx, actorKey{}, actor)
	return context.WithValue(ctx, tokenKey{}, token)
}

// ActorFromContext returns the resolved actor and whether one is present.
func ActorFromContext(ctx context.Context) (domainauth.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domainauth.Actor)
	return actor, ok && actor.ID != ""
}

// tokenFromContext returns the bearer token the actor was resolved from.
func tokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}
