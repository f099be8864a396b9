// Package plugin defines the plugin system for fabric.
// Plugins are notified of lifecycle events (entity created, link deleted,
// role granted, access denied, etc.) and can react — logging, metrics,
// outbound notifications.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Entity lifecycle hooks
// ──────────────────────────────────────────────────

// EntityCreated is called after an entity is created.
type EntityCreated interface {
	OnEntityCreated(ctx context.Context, e *entity.Entity) error
}

// EntityUpdated is called after an entity is updated.
type EntityUpdated interface {
	OnEntityUpdated(ctx context.Context, e *entity.Entity) error
}

// EntityArchived is called after an entity reaches the archived state.
type EntityArchived interface {
	OnEntityArchived(ctx context.Context, e *entity.Entity) error
}

// ──────────────────────────────────────────────────
// Link lifecycle hooks
// ──────────────────────────────────────────────────

// LinkCreated is called after a link is written.
type LinkCreated interface {
	OnLinkCreated(ctx context.Context, l *link.Link) error
}

// LinkDeleted is called after a link is removed.
type LinkDeleted interface {
	OnLinkDeleted(ctx context.Context, linkID id.LinkID) error
}

// AvailabilityChanged is called after an availability edge is written or
// flipped.
type AvailabilityChanged interface {
	OnAvailabilityChanged(ctx context.Context, tenantID string, entityID id.EntityID, enabled bool) error
}

// ──────────────────────────────────────────────────
// Membership lifecycle hooks
// ──────────────────────────────────────────────────

// RoleGranted is called after a role is granted to an actor.
type RoleGranted interface {
	OnRoleGranted(ctx context.Context, m *membership.Membership) error
}

// RoleRevoked is called after a membership is revoked.
type RoleRevoked interface {
	OnRoleRevoked(ctx context.Context, m *membership.Membership) error
}

// ──────────────────────────────────────────────────
// Audit hooks
// ──────────────────────────────────────────────────

// ActionRecorded is called after any record is appended to the action log,
// including denials. Useful for shipping audit events to external
// compliance tooling.
type ActionRecorded interface {
	OnActionRecorded(ctx context.Context, r *actionlog.Record) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
