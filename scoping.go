package fabric

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/store"
)

// The scoping filter. Every read and write is routed through these helpers
// after the capability check, so tenancy rules live in exactly one place.

// entityVisible reports whether the resolved context may see the entity.
// A tenant sees its own records, plus system-owned records that have an
// enabled availability edge in its scope. Elevated contexts see everything.
func (e *Engine) entityVisible(ctx context.Context, rc *Context, ent *entity.Entity) (bool, error) {
	if rc.Elevated {
		return true, nil
	}
	if ent.TenantID == rc.TenantID {
		return true, nil
	}
	if ent.TenantID == SystemTenant {
		edge, err := e.store.FindLink(ctx, rc.TenantID, ent.ID, ent.ID, link.AvailabilityType)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("fabric: availability lookup: %w", err)
		}
		return edge.Enabled(), nil
	}
	return false, nil
}

// visibleEntity loads an entity and applies the scope filter. A record that
// does not exist and a record outside the caller's scope produce the same
// ErrNotFound, so callers cannot probe other tenants' data.
func (e *Engine) visibleEntity(ctx context.Context, rc *Context, entityID id.EntityID) (*entity.Entity, error) {
	ent, err := e.store.GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: entity %s", ErrNotFound, entityID)
		}
		return nil, fmt.Errorf("fabric: get entity: %w", err)
	}

	visible, err := e.entityVisible(ctx, rc, ent)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, fmt.Errorf("%w: entity %s", ErrNotFound, entityID)
	}
	return ent, nil
}

// linkVisible reports whether the resolved context may see the link.
// Links live in exactly one tenant's scope; there is no sharing mechanism
// for edges.
func linkVisible(rc *Context, l *link.Link) bool {
	return rc.Elevated || l.TenantID == rc.TenantID
}

// filterLinks drops links outside the caller's scope along with
// availability edges, which are access control rather than graph structure.
func filterLinks(rc *Context, links []*link.Link) []*link.Link {
	out := make([]*link.Link, 0, len(links))
	for _, l := range links {
		if !linkVisible(rc, l) || l.LinkType == link.AvailabilityType {
			continue
		}
		out = append(out, l)
	}
	return out
}

// scopedLinks wraps a link store so that traversal only ever observes edges
// inside the caller's scope.
type scopedLinks struct {
	link.Store
	rc *Context
}

func (s *scopedLinks) ListLinksFrom(ctx context.Context, sourceID id.EntityID, linkType string) ([]*link.Link, error) {
	links, err := s.Store.ListLinksFrom(ctx, sourceID, linkType)
	if err != nil {
		return nil, err
	}
	return filterLinks(s.rc, links), nil
}

func (s *scopedLinks) ListLinksTo(ctx context.Context, targetID id.EntityID, linkType string) ([]*link.Link, error) {
	links, err := s.Store.ListLinksTo(ctx, targetID, linkType)
	if err != nil {
		return nil, err
	}
	return filterLinks(s.rc, links), nil
}
