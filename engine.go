package fabric

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/plugin"
	"github.com/xraph/fabric/schema"
	"github.com/xraph/fabric/store"
)

// Engine is the tenant-aware core. Every operation runs the same pipeline:
// resolve the actor's context, evaluate the required capability, apply the
// scope filter, touch the store, and append to the action log.
type Engine struct {
	store     store.Store
	resolver  ContextResolver
	evaluator Evaluator
	traverser Traverser
	cache     Cache
	plugins   *plugin.Registry
	logger    *slog.Logger
	config    Config
}

// NewEngine creates a new fabric engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		evaluator: DefaultEvaluator(),
		traverser: DefaultTraverser(),
		logger:    slog.Default(),
		config:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("fabric: store is required")
	}
	if e.resolver == nil {
		e.resolver = NewResolver(e.store)
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Authorization pipeline
// ──────────────────────────────────────────────────

// authorize resolves the caller's context and evaluates the capability.
// A denial appends exactly one record to the action log before the error is
// returned; callers never log denials themselves.
func (e *Engine) authorize(ctx context.Context, capability, resourceRef string) (*Context, error) {
	scope := scopeFromContext(ctx)

	rc, err := e.resolver.Resolve(ctx, scope.actorID, scope.tenantID)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			e.record(ctx, &Context{ActorID: scope.actorID, TenantID: scope.tenantID},
				capability, resourceRef, actionlog.OutcomeDenied,
				map[string]any{"reason": err.Error()})
		}
		return nil, err
	}

	d := e.checkCached(ctx, rc, capability, resourceRef)
	if !d.Allowed {
		e.record(ctx, rc, capability, resourceRef, actionlog.OutcomeDenied,
			map[string]any{"reason": d.Reason})
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, d.Reason)
	}
	return rc, nil
}

// Check resolves the caller's context and evaluates a capability without
// touching any data. Denials append to the action log exactly as they
// would for the operation itself, so pre-flight checks and enforcement
// middleware leave the same audit trail.
func (e *Engine) Check(ctx context.Context, capability, resourceRef string) (*Context, error) {
	return e.authorize(ctx, capability, resourceRef)
}

// checkCached runs the evaluator through the decision cache. Decisions are
// keyed by (tenant, actor, capability); the resource hint only shapes the
// denial reason, never the outcome, so it is safe to omit from the key.
func (e *Engine) checkCached(ctx context.Context, rc *Context, capability, resourceRef string) Decision {
	if e.cache == nil || rc.Elevated {
		return e.evaluator.Check(rc, capability, resourceRef)
	}
	if cached, ok := e.cache.Get(ctx, rc.TenantID, rc.ActorID, capability); ok {
		return *cached
	}
	d := e.evaluator.Check(rc, capability, resourceRef)
	e.cache.Set(ctx, rc.TenantID, rc.ActorID, capability, &d)
	return d
}

// record appends one entry to the action log. Log failures are logged and
// swallowed; an audit hiccup must not fail the operation it describes.
func (e *Engine) record(ctx context.Context, rc *Context, action, resourceRef string, outcome actionlog.Outcome, meta map[string]any) {
	if outcome == actionlog.OutcomeSuccess && !e.config.auditEnabled() {
		return
	}
	rec := &actionlog.Record{
		ID:          id.NewActionID(),
		ActorID:     rc.ActorID,
		TenantID:    rc.TenantID,
		Action:      action,
		ResourceRef: resourceRef,
		Outcome:     outcome,
		Elevated:    rc.Elevated,
		Metadata:    meta,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.AppendAction(ctx, rec); err != nil {
		e.logger.Error("append action log",
			slog.String("action", action),
			slog.String("actor_id", rc.ActorID),
			slog.String("error", err.Error()),
		)
		return
	}
	if e.plugins != nil {
		e.plugins.EmitActionRecorded(ctx, rec)
	}
}

// scopeViolation records the denied attempt and returns ErrScopeViolation.
func (e *Engine) scopeViolation(ctx context.Context, rc *Context, action, resourceRef, detail string) error {
	e.record(ctx, rc, action, resourceRef, actionlog.OutcomeDenied,
		map[string]any{"reason": detail})
	return fmt.Errorf("%w: %s", ErrScopeViolation, detail)
}

// ──────────────────────────────────────────────────
// Entity operations
// ──────────────────────────────────────────────────

// CreateEntity validates the payload against the registered schema and
// creates a draft entity in the caller's tenant.
func (e *Engine) CreateEntity(ctx context.Context, req *CreateEntityRequest) (*entity.Entity, error) {
	rc, err := e.authorize(ctx, CapEntityCreate, req.Type)
	if err != nil {
		return nil, err
	}

	if req.Type == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: type and name are required", ErrValidation)
	}

	tenantID := rc.TenantID
	if tenantID == "" {
		// Global elevated context: records land in the system scope.
		tenantID = SystemTenant
	}

	def, err := e.definitionFor(ctx, req.Type, req.Subtype)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(req.CustomProperties); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	now := time.Now().UTC()
	ent := &entity.Entity{
		ID:               id.NewEntityID(),
		TenantID:         tenantID,
		Type:             req.Type,
		Subtype:          req.Subtype,
		Name:             req.Name,
		Description:      req.Description,
		Status:           entity.StatusDraft,
		CustomProperties: req.CustomProperties,
		CreatedBy:        rc.ActorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.store.CreateEntity(ctx, ent); err != nil {
		return nil, fmt.Errorf("fabric: create entity: %w", err)
	}

	e.record(ctx, rc, CapEntityCreate, ent.ID.String(), actionlog.OutcomeSuccess,
		map[string]any{"type": ent.Type, "subtype": ent.Subtype})
	if e.plugins != nil {
		e.plugins.EmitEntityCreated(ctx, ent)
	}
	return ent, nil
}

// GetEntity retrieves one entity within the caller's scope.
func (e *Engine) GetEntity(ctx context.Context, entityID id.EntityID) (*entity.Entity, error) {
	rc, err := e.authorize(ctx, CapEntityView, entityID.String())
	if err != nil {
		return nil, err
	}
	return e.visibleEntity(ctx, rc, entityID)
}

// UpdateEntity applies a patch to an entity the caller's tenant owns.
// Type, Subtype, and TenantID are immutable; attempts to change them fail
// validation before anything is read. Writes use optimistic concurrency:
// of two concurrent updates exactly one wins and the other gets ErrConflict.
func (e *Engine) UpdateEntity(ctx context.Context, entityID id.EntityID, patch *EntityPatch) (*entity.Entity, error) {
	rc, err := e.authorize(ctx, CapEntityUpdate, entityID.String())
	if err != nil {
		return nil, err
	}

	if patch.Type != nil || patch.Subtype != nil || patch.TenantID != nil {
		return nil, fmt.Errorf("%w: type, subtype, and tenant are immutable", ErrValidation)
	}

	ent, err := e.visibleEntity(ctx, rc, entityID)
	if err != nil {
		return nil, err
	}
	if !rc.Elevated && ent.TenantID != rc.TenantID {
		// Visible through an availability edge, but owned elsewhere.
		return nil, e.scopeViolation(ctx, rc, CapEntityUpdate, entityID.String(),
			"entity is owned by another tenant")
	}
	if ent.Status == entity.StatusArchived {
		return nil, fmt.Errorf("%w: entity is archived", ErrValidation)
	}

	if patch.Name != nil {
		ent.Name = *patch.Name
	}
	if patch.Description != nil {
		ent.Description = *patch.Description
	}
	if patch.Status != nil {
		next := entity.Status(*patch.Status)
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
		}
		if next == entity.StatusArchived {
			return nil, fmt.Errorf("%w: archiving goes through ArchiveEntity", ErrValidation)
		}
		ent.Status = next
	}
	if patch.CustomProperties != nil {
		def, err := e.definitionFor(ctx, ent.Type, ent.Subtype)
		if err != nil {
			return nil, err
		}
		if err := def.Validate(patch.CustomProperties); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err)
		}
		ent.CustomProperties = patch.CustomProperties
	}

	if err := e.store.UpdateEntity(ctx, ent); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: entity %s was modified concurrently", ErrConflict, entityID)
		}
		return nil, fmt.Errorf("fabric: update entity: %w", err)
	}

	e.record(ctx, rc, CapEntityUpdate, ent.ID.String(), actionlog.OutcomeSuccess, nil)
	if e.plugins != nil {
		e.plugins.EmitEntityUpdated(ctx, ent)
	}
	return ent, nil
}

// ListEntities returns entities in the caller's scope: the tenant's own
// records plus system-owned records shared into the tenant through an
// enabled availability edge. Elevated contexts list across tenants.
func (e *Engine) ListEntities(ctx context.Context, filter *entity.ListFilter) ([]*entity.Entity, error) {
	rc, err := e.authorize(ctx, CapEntityView, "")
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &entity.ListFilter{}
	}

	if rc.Elevated {
		return e.store.ListEntities(ctx, filter)
	}

	// Merge own records with enabled shares, then paginate the union so
	// shared records are not pushed off the page by the store's own limit.
	own := *filter
	own.TenantID = rc.TenantID
	limit, offset := own.Limit, own.Offset
	own.Limit, own.Offset = 0, 0

	ents, err := e.store.ListEntities(ctx, &own)
	if err != nil {
		return nil, fmt.Errorf("fabric: list entities: %w", err)
	}

	shared, err := e.sharedEntities(ctx, rc, &own)
	if err != nil {
		return nil, err
	}
	ents = append(ents, shared...)

	return paginate(ents, limit, offset), nil
}

// sharedEntities resolves the tenant's enabled availability edges into the
// system-owned entities they share, applying the same list filter.
func (e *Engine) sharedEntities(ctx context.Context, rc *Context, filter *entity.ListFilter) ([]*entity.Entity, error) {
	edges, err := e.store.ListLinks(ctx, &link.ListFilter{
		TenantID: rc.TenantID,
		LinkType: link.AvailabilityType,
	})
	if err != nil {
		return nil, fmt.Errorf("fabric: list availability edges: %w", err)
	}

	var out []*entity.Entity
	for _, edge := range edges {
		if !edge.Enabled() {
			continue
		}
		ent, err := e.store.GetEntity(ctx, edge.SourceID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("fabric: resolve shared entity: %w", err)
		}
		if matchesFilter(ent, filter) {
			out = append(out, ent)
		}
	}
	return out, nil
}

func matchesFilter(ent *entity.Entity, f *entity.ListFilter) bool {
	if f.Type != "" && ent.Type != f.Type {
		return false
	}
	if f.Subtype != "" && ent.Subtype != f.Subtype {
		return false
	}
	if f.Status != "" && ent.Status != f.Status {
		return false
	}
	if f.Search != "" && !containsFold(ent.Name, f.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func paginate(ents []*entity.Entity, limit, offset int) []*entity.Entity {
	if offset >= len(ents) {
		return nil
	}
	ents = ents[offset:]
	if limit > 0 && limit < len(ents) {
		ents = ents[:limit]
	}
	return ents
}

// ArchiveEntity moves an entity to the terminal archived state. Links
// referencing the entity are consulted against the per-type archive policy:
// block types fail the archive, cascade types are deleted with it.
// Archiving an already archived entity is a no-op.
func (e *Engine) ArchiveEntity(ctx context.Context, entityID id.EntityID) (*entity.Entity, error) {
	rc, err := e.authorize(ctx, CapEntityArchive, entityID.String())
	if err != nil {
		return nil, err
	}

	ent, err := e.visibleEntity(ctx, rc, entityID)
	if err != nil {
		return nil, err
	}
	if !rc.Elevated && ent.TenantID != rc.TenantID {
		return nil, e.scopeViolation(ctx, rc, CapEntityArchive, entityID.String(),
			"entity is owned by another tenant")
	}
	if ent.Status == entity.StatusArchived {
		return ent, nil
	}

	if err := e.applyArchivePolicies(ctx, ent.ID); err != nil {
		return nil, err
	}

	ent.Status = entity.StatusArchived
	if err := e.store.UpdateEntity(ctx, ent); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: entity %s was modified concurrently", ErrConflict, entityID)
		}
		return nil, fmt.Errorf("fabric: archive entity: %w", err)
	}

	e.record(ctx, rc, CapEntityArchive, ent.ID.String(), actionlog.OutcomeSuccess, nil)
	if e.plugins != nil {
		e.plugins.EmitEntityArchived(ctx, ent)
	}
	return ent, nil
}

// applyArchivePolicies checks every link type referencing the entity before
// any edge is deleted, so a blocked archive leaves the graph untouched.
func (e *Engine) applyArchivePolicies(ctx context.Context, entityID id.EntityID) error {
	outbound, err := e.store.ListLinksFrom(ctx, entityID, "")
	if err != nil {
		return fmt.Errorf("fabric: archive policy scan: %w", err)
	}
	inbound, err := e.store.ListLinksTo(ctx, entityID, "")
	if err != nil {
		return fmt.Errorf("fabric: archive policy scan: %w", err)
	}

	cascade := map[string]struct{}{}
	for _, l := range append(outbound, inbound...) {
		if l.LinkType == link.AvailabilityType {
			continue
		}
		if e.config.archiveActionFor(l.LinkType) == link.ArchiveCascade {
			cascade[l.LinkType] = struct{}{}
			continue
		}
		return fmt.Errorf("%w: archive blocked by %q link %s", ErrConflict, l.LinkType, l.ID)
	}

	for linkType := range cascade {
		if _, err := e.store.DeleteLinksForEntity(ctx, entityID, linkType); err != nil {
			return fmt.Errorf("fabric: cascade links: %w", err)
		}
	}
	return nil
}

// definitionFor looks up the schema definition an entity payload is
// validated against. Unregistered (type, subtype) pairs fail validation.
func (e *Engine) definitionFor(ctx context.Context, entityType, subtype string) (*schema.Definition, error) {
	def, err := e.store.GetDefinition(ctx, entityType, subtype)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no schema registered for %s/%s", ErrValidation, entityType, subtype)
		}
		return nil, fmt.Errorf("fabric: get schema definition: %w", err)
	}
	return def, nil
}
