package membership

import (
	"context"

	"github.com/xraph/fabric/id"
)

// Store defines persistence operations for memberships.
//
// The context resolver reads this store on every request; implementations
// must return current data with no internal caching so role changes take
// effect on the very next call.
type Store interface {
	// CreateMembership persists a new membership. It fails with a conflict
	// error when the actor already holds a membership in the tenant.
	CreateMembership(ctx context.Context, m *Membership) error

	// GetMembership retrieves the membership of an actor in a tenant.
	GetMembership(ctx context.Context, actorID, tenantID string) (*Membership, error)

	// UpdateMembership persists a role change.
	UpdateMembership(ctx context.Context, m *Membership) error

	// DeleteMembership removes a membership by ID.
	DeleteMembership(ctx context.Context, membershipID id.MembershipID) error

	// ListMembershipsForActor returns all memberships held by an actor.
	ListMembershipsForActor(ctx context.Context, actorID string) ([]*Membership, error)

	// ListMemberships returns memberships matching the filter.
	ListMemberships(ctx context.Context, filter *ListFilter) ([]*Membership, error)

	// CountMemberships returns the number of memberships matching the filter.
	CountMemberships(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteMembershipsByTenant removes all memberships for a tenant.
	DeleteMembershipsByTenant(ctx context.Context, tenantID string) error
}
