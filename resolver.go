package fabric

import (
	"context"
	"fmt"

	"github.com/xraph/fabric/membership"
)

// ContextResolver turns an actor and an optional requested tenant into a
// resolved Context. It is a pure function of current membership data: no
// side effects, no caching, so role changes take effect on the very next
// call.
type ContextResolver interface {
	Resolve(ctx context.Context, actorID, requestedTenantID string) (*Context, error)
}

// NewResolver returns the default membership-backed resolver.
func NewResolver(members membership.Store) ContextResolver {
	return &membershipResolver{members: members}
}

type membershipResolver struct {
	members membership.Store
}

func (r *membershipResolver) Resolve(ctx context.Context, actorID, requestedTenantID string) (*Context, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: no actor", ErrPermissionDenied)
	}

	all, err := r.members.ListMembershipsForActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("fabric: resolve context: %w", err)
	}

	// A super_admin membership in the system tenant grants the platform-
	// wide elevated capability. The requested tenant, if any, becomes the
	// acting tenant ("act as tenant X"); otherwise the context is global.
	for _, m := range all {
		if m.TenantID == SystemTenant && Role(m.Role) == RoleSuperAdmin {
			return &Context{
				ActorID:  actorID,
				TenantID: requestedTenantID,
				Role:     RoleSuperAdmin,
				Elevated: true,
			}, nil
		}
	}

	tenantMemberships := all[:0:0]
	for _, m := range all {
		if m.TenantID != SystemTenant {
			tenantMemberships = append(tenantMemberships, m)
		}
	}

	if len(tenantMemberships) == 0 {
		return nil, fmt.Errorf("%w: actor belongs to no tenant", ErrPermissionDenied)
	}

	// Mismatches fail closed: never fall back silently to another tenant.
	if requestedTenantID != "" {
		for _, m := range tenantMemberships {
			if m.TenantID == requestedTenantID {
				return contextFor(actorID, m)
			}
		}
		return nil, fmt.Errorf("%w: actor is not a member of the requested tenant", ErrPermissionDenied)
	}

	if len(tenantMemberships) == 1 {
		return contextFor(actorID, tenantMemberships[0])
	}

	return nil, fmt.Errorf("%w: actor belongs to multiple tenants, tenant required", ErrPermissionDenied)
}

func contextFor(actorID string, m *membership.Membership) (*Context, error) {
	role := Role(m.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: membership holds unknown role %q", ErrPermissionDenied, m.Role)
	}
	return &Context{
		ActorID:  actorID,
		TenantID: m.TenantID,
		Role:     role,
	}, nil
}
