package fabric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
	"github.com/xraph/fabric/schema"
	"github.com/xraph/fabric/store"
)

// ──────────────────────────────────────────────────
// Availability
// ──────────────────────────────────────────────────

// SetAvailability shares a system-owned entity into a tenant's scope, or
// flips the enabled switch on an existing share. No tenant role carries the
// required capability, so only elevated contexts get through. Disabling
// keeps the edge with enabled=false, preserving attributes for a later
// re-enable.
func (e *Engine) SetAvailability(ctx context.Context, tenantID string, entityID id.EntityID, enabled bool) error {
	rc, err := e.authorize(ctx, CapAvailabilityManage, entityID.String())
	if err != nil {
		return err
	}

	if tenantID == "" || tenantID == SystemTenant {
		return fmt.Errorf("%w: availability targets a regular tenant", ErrValidation)
	}

	ent, err := e.store.GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: entity %s", ErrNotFound, entityID)
		}
		return fmt.Errorf("fabric: get entity: %w", err)
	}
	if ent.TenantID != SystemTenant {
		return fmt.Errorf("%w: only system-owned entities can be shared", ErrValidation)
	}

	edge, err := e.store.FindLink(ctx, tenantID, entityID, entityID, link.AvailabilityType)
	switch {
	case err == nil:
		attrs := edge.Attrs
		if attrs == nil {
			attrs = map[string]any{}
		}
		attrs["enabled"] = enabled
		if err := e.store.UpdateLinkAttrs(ctx, edge.ID, attrs); err != nil {
			return fmt.Errorf("fabric: update availability: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
		edge = &link.Link{
			ID:        id.NewLinkID(),
			TenantID:  tenantID,
			SourceID:  entityID,
			TargetID:  entityID,
			LinkType:  link.AvailabilityType,
			Attrs:     map[string]any{"enabled": enabled},
			CreatedBy: rc.ActorID,
			CreatedAt: time.Now().UTC(),
		}
		if err := e.store.CreateLink(ctx, edge); err != nil {
			return fmt.Errorf("fabric: create availability: %w", err)
		}
	default:
		return fmt.Errorf("fabric: find availability: %w", err)
	}

	e.record(ctx, rc, CapAvailabilityManage, entityID.String(), actionlog.OutcomeSuccess,
		map[string]any{"target_tenant": tenantID, "enabled": enabled})
	if e.plugins != nil {
		e.plugins.EmitAvailabilityChanged(ctx, tenantID, entityID, enabled)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Memberships
// ──────────────────────────────────────────────────

// GrantRole gives an actor a role in the caller's tenant, replacing any
// existing membership there. Grantors may only hand out roles strictly
// below their own, and may not replace a membership they do not outrank.
func (e *Engine) GrantRole(ctx context.Context, actorID string, role Role) (*membership.Membership, error) {
	rc, err := e.authorize(ctx, CapMemberGrant, actorID)
	if err != nil {
		return nil, err
	}

	if actorID == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	tenantID := rc.TenantID
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant is required to grant a role", ErrValidation)
	}
	if tenantID == SystemTenant && !rc.Elevated {
		return nil, e.scopeViolation(ctx, rc, CapMemberGrant, actorID,
			"system tenant memberships require an elevated context")
	}

	if !rc.Elevated && !CanGrant(rc.Role, role) {
		e.record(ctx, rc, CapMemberGrant, actorID, actionlog.OutcomeDenied,
			map[string]any{"reason": "role " + string(role) + " is not below grantor role " + string(rc.Role)})
		return nil, fmt.Errorf("%w: cannot grant role %q from role %q", ErrPermissionDenied, role, rc.Role)
	}

	existing, err := e.store.GetMembership(ctx, actorID, tenantID)
	switch {
	case err == nil:
		if !rc.Elevated && !rc.Role.Outranks(Role(existing.Role)) {
			e.record(ctx, rc, CapMemberGrant, actorID, actionlog.OutcomeDenied,
				map[string]any{"reason": "existing role " + existing.Role + " is not below grantor role " + string(rc.Role)})
			return nil, fmt.Errorf("%w: cannot replace role %q from role %q", ErrPermissionDenied, existing.Role, rc.Role)
		}
		existing.Role = string(role)
		existing.GrantedBy = rc.ActorID
		if err := e.store.UpdateMembership(ctx, existing); err != nil {
			return nil, fmt.Errorf("fabric: update membership: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
		existing = &membership.Membership{
			ID:        id.NewMembershipID(),
			ActorID:   actorID,
			TenantID:  tenantID,
			Role:      string(role),
			GrantedBy: rc.ActorID,
			CreatedAt: time.Now().UTC(),
		}
		if err := e.store.CreateMembership(ctx, existing); err != nil {
			return nil, fmt.Errorf("fabric: create membership: %w", err)
		}
	default:
		return nil, fmt.Errorf("fabric: get membership: %w", err)
	}

	if e.cache != nil {
		e.cache.InvalidateActor(ctx, tenantID, actorID)
	}

	e.record(ctx, rc, CapMemberGrant, actorID, actionlog.OutcomeSuccess,
		map[string]any{"role": string(role)})
	if e.plugins != nil {
		e.plugins.EmitRoleGranted(ctx, existing)
	}
	return existing, nil
}

// RevokeRole removes an actor's membership in the caller's tenant. The
// caller must outrank the membership being revoked.
func (e *Engine) RevokeRole(ctx context.Context, actorID string) error {
	rc, err := e.authorize(ctx, CapMemberRevoke, actorID)
	if err != nil {
		return err
	}

	tenantID := rc.TenantID
	if tenantID == "" {
		return fmt.Errorf("%w: tenant is required to revoke a role", ErrValidation)
	}

	m, err := e.store.GetMembership(ctx, actorID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: membership for %s", ErrNotFound, actorID)
		}
		return fmt.Errorf("fabric: get membership: %w", err)
	}

	if !rc.Elevated && !rc.Role.Outranks(Role(m.Role)) {
		e.record(ctx, rc, CapMemberRevoke, actorID, actionlog.OutcomeDenied,
			map[string]any{"reason": "membership role " + m.Role + " is not below revoker role " + string(rc.Role)})
		return fmt.Errorf("%w: cannot revoke role %q from role %q", ErrPermissionDenied, m.Role, rc.Role)
	}

	if err := e.store.DeleteMembership(ctx, m.ID); err != nil {
		return fmt.Errorf("fabric: delete membership: %w", err)
	}

	if e.cache != nil {
		e.cache.InvalidateActor(ctx, tenantID, actorID)
	}

	e.record(ctx, rc, CapMemberRevoke, actorID, actionlog.OutcomeSuccess,
		map[string]any{"role": m.Role})
	if e.plugins != nil {
		e.plugins.EmitRoleRevoked(ctx, m)
	}
	return nil
}

// Memberships lists role bindings in the caller's tenant. Elevated contexts
// may list across tenants by leaving the filter's tenant empty.
func (e *Engine) Memberships(ctx context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	rc, err := e.authorize(ctx, CapMemberView, "")
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &membership.ListFilter{}
	}
	if !rc.Elevated {
		filter.TenantID = rc.TenantID
	}

	out, err := e.store.ListMemberships(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fabric: list memberships: %w", err)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Action log
// ──────────────────────────────────────────────────

// Actions queries the append-only action log, newest first. Non-elevated
// callers only ever see their own tenant's slice of the log.
func (e *Engine) Actions(ctx context.Context, filter *actionlog.QueryFilter) ([]*actionlog.Record, error) {
	rc, err := e.authorize(ctx, CapAuditView, "")
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &actionlog.QueryFilter{}
	}
	if !rc.Elevated {
		filter.TenantID = rc.TenantID
	}

	out, err := e.store.ListActions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fabric: list actions: %w", err)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Schema registry
// ──────────────────────────────────────────────────

// RegisterSchema creates or replaces the structural definition for a
// (type, subtype) pair. Definitions are platform-owned; no tenant role
// carries the capability, so only elevated contexts get through.
func (e *Engine) RegisterSchema(ctx context.Context, def *schema.Definition) (*schema.Definition, error) {
	rc, err := e.authorize(ctx, CapSchemaManage, def.Type+"/"+def.Subtype)
	if err != nil {
		return nil, err
	}

	if def.Type == "" {
		return nil, fmt.Errorf("%w: schema type is required", ErrValidation)
	}
	seen := map[string]struct{}{}
	for _, f := range def.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: schema field name is required", ErrValidation)
		}
		if !f.Kind.Valid() {
			return nil, fmt.Errorf("%w: unknown field kind %q", ErrValidation, f.Kind)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrValidation, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	now := time.Now().UTC()
	existing, err := e.store.GetDefinition(ctx, def.Type, def.Subtype)
	switch {
	case err == nil:
		existing.Description = def.Description
		existing.Fields = def.Fields
		existing.Metadata = def.Metadata
		existing.UpdatedAt = now
		if err := e.store.UpdateDefinition(ctx, existing); err != nil {
			return nil, fmt.Errorf("fabric: update schema: %w", err)
		}
		def = existing
	case errors.Is(err, store.ErrNotFound):
		def.ID = id.NewSchemaID()
		def.CreatedAt = now
		def.UpdatedAt = now
		if err := e.store.CreateDefinition(ctx, def); err != nil {
			return nil, fmt.Errorf("fabric: create schema: %w", err)
		}
	default:
		return nil, fmt.Errorf("fabric: get schema: %w", err)
	}

	e.record(ctx, rc, CapSchemaManage, def.Type+"/"+def.Subtype, actionlog.OutcomeSuccess, nil)
	return def, nil
}

// Schemas lists registered schema definitions. Any member may read them;
// clients need the shapes to build forms and validate input early.
func (e *Engine) Schemas(ctx context.Context, filter *schema.ListFilter) ([]*schema.Definition, error) {
	if _, err := e.authorize(ctx, CapEntityView, ""); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &schema.ListFilter{}
	}

	out, err := e.store.ListDefinitions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fabric: list schemas: %w", err)
	}
	return out, nil
}
