package fabric

import "context"

// Cache provides caching for permission decisions.
type Cache interface {
	// Get returns a cached decision, if available.
	Get(ctx context.Context, tenantID, actorID, capability string) (*Decision, bool)

	// Set stores a decision in the cache.
	Set(ctx context.Context, tenantID, actorID, capability string, d *Decision)

	// InvalidateTenant removes all cached decisions for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)

	// InvalidateActor removes all cached decisions for an actor within a
	// tenant.
	InvalidateActor(ctx context.Context, tenantID, actorID string)
}
