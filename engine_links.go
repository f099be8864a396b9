package fabric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/store"
)

// ──────────────────────────────────────────────────
// Link operations
// ──────────────────────────────────────────────────

// CreateLink creates a typed, directed edge between two entities visible to
// the caller. The edge lives in the caller's tenant scope. Creating the
// same (source, target, type) edge twice fails with ErrConflict.
func (e *Engine) CreateLink(ctx context.Context, req *CreateLinkRequest) (*link.Link, error) {
	rc, err := e.authorize(ctx, CapLinkCreate, req.LinkType)
	if err != nil {
		return nil, err
	}

	if req.SourceID.IsNil() || req.TargetID.IsNil() || req.LinkType == "" {
		return nil, fmt.Errorf("%w: source, target, and link type are required", ErrValidation)
	}
	if req.LinkType == link.AvailabilityType {
		return nil, fmt.Errorf("%w: %q is reserved, use SetAvailability", ErrValidation, link.AvailabilityType)
	}

	src, err := e.visibleEntity(ctx, rc, req.SourceID)
	if err != nil {
		return nil, err
	}
	tgt, err := e.visibleEntity(ctx, rc, req.TargetID)
	if err != nil {
		return nil, err
	}
	if src.Status == entity.StatusArchived || tgt.Status == entity.StatusArchived {
		return nil, fmt.Errorf("%w: cannot link archived entities", ErrValidation)
	}

	tenantID := rc.TenantID
	if tenantID == "" {
		tenantID = SystemTenant
	}

	l := &link.Link{
		ID:        id.NewLinkID(),
		TenantID:  tenantID,
		SourceID:  req.SourceID,
		TargetID:  req.TargetID,
		LinkType:  req.LinkType,
		Attrs:     req.Attrs,
		CreatedBy: rc.ActorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateLink(ctx, l); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: link %s -%s-> %s already exists",
				ErrConflict, req.SourceID, req.LinkType, req.TargetID)
		}
		return nil, fmt.Errorf("fabric: create link: %w", err)
	}

	e.record(ctx, rc, CapLinkCreate, l.ID.String(), actionlog.OutcomeSuccess,
		map[string]any{"link_type": l.LinkType, "source_id": l.SourceID.String(), "target_id": l.TargetID.String()})
	if e.plugins != nil {
		e.plugins.EmitLinkCreated(ctx, l)
	}
	return l, nil
}

// DeleteLink removes an edge in the caller's tenant scope. Availability
// edges cannot be deleted here; they are managed through SetAvailability.
func (e *Engine) DeleteLink(ctx context.Context, linkID id.LinkID) error {
	rc, err := e.authorize(ctx, CapLinkDelete, linkID.String())
	if err != nil {
		return err
	}

	l, err := e.visibleLink(ctx, rc, linkID)
	if err != nil {
		return err
	}
	if l.LinkType == link.AvailabilityType {
		return fmt.Errorf("%w: %q is reserved, use SetAvailability", ErrValidation, link.AvailabilityType)
	}

	if err := e.store.DeleteLink(ctx, linkID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: link %s", ErrNotFound, linkID)
		}
		return fmt.Errorf("fabric: delete link: %w", err)
	}

	e.record(ctx, rc, CapLinkDelete, linkID.String(), actionlog.OutcomeSuccess,
		map[string]any{"link_type": l.LinkType})
	if e.plugins != nil {
		e.plugins.EmitLinkDeleted(ctx, linkID)
	}
	return nil
}

// LinksFrom returns the outbound edges of an entity within the caller's
// scope, optionally restricted to one link type.
func (e *Engine) LinksFrom(ctx context.Context, entityID id.EntityID, linkType string) ([]*link.Link, error) {
	rc, err := e.authorize(ctx, CapLinkView, entityID.String())
	if err != nil {
		return nil, err
	}
	if _, err := e.visibleEntity(ctx, rc, entityID); err != nil {
		return nil, err
	}

	links, err := e.store.ListLinksFrom(ctx, entityID, linkType)
	if err != nil {
		return nil, fmt.Errorf("fabric: list links: %w", err)
	}
	return filterLinks(rc, links), nil
}

// LinksTo returns the inbound edges of an entity within the caller's scope,
// optionally restricted to one link type.
func (e *Engine) LinksTo(ctx context.Context, entityID id.EntityID, linkType string) ([]*link.Link, error) {
	rc, err := e.authorize(ctx, CapLinkView, entityID.String())
	if err != nil {
		return nil, err
	}
	if _, err := e.visibleEntity(ctx, rc, entityID); err != nil {
		return nil, err
	}

	links, err := e.store.ListLinksTo(ctx, entityID, linkType)
	if err != nil {
		return nil, fmt.Errorf("fabric: list links: %w", err)
	}
	return filterLinks(rc, links), nil
}

// Neighbors dereferences the opposite endpoint of every edge touching the
// entity in the given direction. Endpoints outside the caller's scope are
// silently dropped rather than erroring the whole call.
func (e *Engine) Neighbors(ctx context.Context, entityID id.EntityID, linkType string, dir Direction) ([]*entity.Entity, error) {
	rc, err := e.authorize(ctx, CapLinkView, entityID.String())
	if err != nil {
		return nil, err
	}
	if _, err := e.visibleEntity(ctx, rc, entityID); err != nil {
		return nil, err
	}

	var links []*link.Link
	if dir == DirectionBackward {
		links, err = e.store.ListLinksTo(ctx, entityID, linkType)
	} else {
		links, err = e.store.ListLinksFrom(ctx, entityID, linkType)
	}
	if err != nil {
		return nil, fmt.Errorf("fabric: list links: %w", err)
	}

	var out []*entity.Entity
	seen := map[string]struct{}{}
	for _, l := range filterLinks(rc, links) {
		otherID := l.TargetID
		if dir == DirectionBackward {
			otherID = l.SourceID
		}
		if _, ok := seen[otherID.String()]; ok {
			continue
		}
		seen[otherID.String()] = struct{}{}

		other, err := e.visibleEntity(ctx, rc, otherID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, other)
	}
	return out, nil
}

// Reachable computes the transitive closure of an entity over the link
// graph, bounded by the configured maximum depth. Only edges and endpoints
// inside the caller's scope are observed.
func (e *Engine) Reachable(ctx context.Context, entityID id.EntityID, linkType string, dir Direction) ([]*entity.Entity, error) {
	rc, err := e.authorize(ctx, CapLinkView, entityID.String())
	if err != nil {
		return nil, err
	}
	if _, err := e.visibleEntity(ctx, rc, entityID); err != nil {
		return nil, err
	}

	reached, err := e.traverser.Traverse(ctx, &scopedLinks{Store: e.store, rc: rc},
		entityID, linkType, dir, e.config.MaxTraversalDepth)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Entity, 0, len(reached))
	for _, rid := range reached {
		ent, err := e.visibleEntity(ctx, rc, rid)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, ent)
	}
	return out, nil
}

// visibleLink loads a link and applies the scope filter. Invisible and
// missing links are indistinguishable, same as entities.
func (e *Engine) visibleLink(ctx context.Context, rc *Context, linkID id.LinkID) (*link.Link, error) {
	l, err := e.store.GetLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: link %s", ErrNotFound, linkID)
		}
		return nil, fmt.Errorf("fabric: get link: %w", err)
	}
	if !linkVisible(rc, l) {
		return nil, fmt.Errorf("%w: link %s", ErrNotFound, linkID)
	}
	return l, nil
}
