package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
)

// Named entry types pair a hook with the plugin name for logging.

type entityCreatedEntry struct {
	name string
	hook EntityCreated
}
type entityUpdatedEntry struct {
	name string
	hook EntityUpdated
}
type entityArchivedEntry struct {
	name string
	hook EntityArchived
}
type linkCreatedEntry struct {
	name string
	hook LinkCreated
}
type linkDeletedEntry struct {
	name string
	hook LinkDeleted
}
type availabilityChangedEntry struct {
	name string
	hook AvailabilityChanged
}
type roleGrantedEntry struct {
	name string
	hook RoleGranted
}
type roleRevokedEntry struct {
	name string
	hook RoleRevoked
}
type actionRecordedEntry struct {
	name string
	hook ActionRecorded
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	entityCreated       []entityCreatedEntry
	entityUpdated       []entityUpdatedEntry
	entityArchived      []entityArchivedEntry
	linkCreated         []linkCreatedEntry
	linkDeleted         []linkDeletedEntry
	availabilityChanged []availabilityChangedEntry
	roleGranted         []roleGrantedEntry
	roleRevoked         []roleRevokedEntry
	actionRecorded      []actionRecordedEntry
	shutdown            []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(EntityCreated); ok {
		r.entityCreated = append(r.entityCreated, entityCreatedEntry{name, h})
	}
	if h, ok := p.(EntityUpdated); ok {
		r.entityUpdated = append(r.entityUpdated, entityUpdatedEntry{name, h})
	}
	if h, ok := p.(EntityArchived); ok {
		r.entityArchived = append(r.entityArchived, entityArchivedEntry{name, h})
	}
	if h, ok := p.(LinkCreated); ok {
		r.linkCreated = append(r.linkCreated, linkCreatedEntry{name, h})
	}
	if h, ok := p.(LinkDeleted); ok {
		r.linkDeleted = append(r.linkDeleted, linkDeletedEntry{name, h})
	}
	if h, ok := p.(AvailabilityChanged); ok {
		r.availabilityChanged = append(r.availabilityChanged, availabilityChangedEntry{name, h})
	}
	if h, ok := p.(RoleGranted); ok {
		r.roleGranted = append(r.roleGranted, roleGrantedEntry{name, h})
	}
	if h, ok := p.(RoleRevoked); ok {
		r.roleRevoked = append(r.roleRevoked, roleRevokedEntry{name, h})
	}
	if h, ok := p.(ActionRecorded); ok {
		r.actionRecorded = append(r.actionRecorded, actionRecordedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Entity event emitters
// ──────────────────────────────────────────────────

// EmitEntityCreated notifies all plugins that implement EntityCreated.
func (r *Registry) EmitEntityCreated(ctx context.Context, e *entity.Entity) {
	for _, en := range r.entityCreated {
		if err := en.hook.OnEntityCreated(ctx, e); err != nil {
			r.logHookError("OnEntityCreated", en.name, err)
		}
	}
}

// EmitEntityUpdated notifies all plugins that implement EntityUpdated.
func (r *Registry) EmitEntityUpdated(ctx context.Context, e *entity.Entity) {
	for _, en := range r.entityUpdated {
		if err := en.hook.OnEntityUpdated(ctx, e); err != nil {
			r.logHookError("OnEntityUpdated", en.name, err)
		}
	}
}

// EmitEntityArchived notifies all plugins that implement EntityArchived.
func (r *Registry) EmitEntityArchived(ctx context.Context, e *entity.Entity) {
	for _, en := range r.entityArchived {
		if err := en.hook.OnEntityArchived(ctx, e); err != nil {
			r.logHookError("OnEntityArchived", en.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Link event emitters
// ──────────────────────────────────────────────────

// EmitLinkCreated notifies all plugins that implement LinkCreated.
func (r *Registry) EmitLinkCreated(ctx context.Context, l *link.Link) {
	for _, en := range r.linkCreated {
		if err := en.hook.OnLinkCreated(ctx, l); err != nil {
			r.logHookError("OnLinkCreated", en.name, err)
		}
	}
}

// EmitLinkDeleted notifies all plugins that implement LinkDeleted.
func (r *Registry) EmitLinkDeleted(ctx context.Context, linkID id.LinkID) {
	for _, en := range r.linkDeleted {
		if err := en.hook.OnLinkDeleted(ctx, linkID); err != nil {
			r.logHookError("OnLinkDeleted", en.name, err)
		}
	}
}

// EmitAvailabilityChanged notifies all plugins that implement
// AvailabilityChanged.
func (r *Registry) EmitAvailabilityChanged(ctx context.Context, tenantID string, entityID id.EntityID, enabled bool) {
	for _, en := range r.availabilityChanged {
		if err := en.hook.OnAvailabilityChanged(ctx, tenantID, entityID, enabled); err != nil {
			r.logHookError("OnAvailabilityChanged", en.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Membership event emitters
// ──────────────────────────────────────────────────

// EmitRoleGranted notifies all plugins that implement RoleGranted.
func (r *Registry) EmitRoleGranted(ctx context.Context, m *membership.Membership) {
	for _, en := range r.roleGranted {
		if err := en.hook.OnRoleGranted(ctx, m); err != nil {
			r.logHookError("OnRoleGranted", en.name, err)
		}
	}
}

// EmitRoleRevoked notifies all plugins that implement RoleRevoked.
func (r *Registry) EmitRoleRevoked(ctx context.Context, m *membership.Membership) {
	for _, en := range r.roleRevoked {
		if err := en.hook.OnRoleRevoked(ctx, m); err != nil {
			r.logHookError("OnRoleRevoked", en.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Audit event emitter
// ──────────────────────────────────────────────────

// EmitActionRecorded notifies all plugins that implement ActionRecorded.
func (r *Registry) EmitActionRecorded(ctx context.Context, rec *actionlog.Record) {
	for _, en := range r.actionRecorded {
		if err := en.hook.OnActionRecorded(ctx, rec); err != nil {
			r.logHookError("OnActionRecorded", en.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, en := range r.shutdown {
		if err := en.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", en.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
