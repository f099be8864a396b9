package link

import (
	"context"

	"github.com/xraph/fabric/id"
)

// Store defines persistence operations for links.
//
// Bidirectional traversal is served by two independent secondary indexes
// over the one link table — by (source_id, link_type) and by
// (target_id, link_type) — never by storing the edge twice.
type Store interface {
	// CreateLink persists a new link. It fails with a conflict error when
	// a link with the same (tenant, source, target, type) already exists.
	CreateLink(ctx context.Context, l *Link) error

	// GetLink retrieves a link by ID.
	GetLink(ctx context.Context, linkID id.LinkID) (*Link, error)

	// FindLink retrieves a link by its composite key.
	FindLink(ctx context.Context, tenantID string, sourceID, targetID id.EntityID, linkType string) (*Link, error)

	// UpdateLinkAttrs replaces the attribute map of an existing link.
	UpdateLinkAttrs(ctx context.Context, linkID id.LinkID, attrs map[string]any) error

	// DeleteLink removes a link by ID.
	DeleteLink(ctx context.Context, linkID id.LinkID) error

	// ListLinksFrom returns links whose source is the given entity,
	// optionally restricted to one link type.
	ListLinksFrom(ctx context.Context, sourceID id.EntityID, linkType string) ([]*Link, error)

	// ListLinksTo returns links whose target is the given entity,
	// optionally restricted to one link type.
	ListLinksTo(ctx context.Context, targetID id.EntityID, linkType string) ([]*Link, error)

	// ListLinks returns links matching the filter.
	ListLinks(ctx context.Context, filter *ListFilter) ([]*Link, error)

	// CountLinks returns the number of links matching the filter.
	CountLinks(ctx context.Context, filter *ListFilter) (int64, error)

	// CountLinksForEntity returns the number of links referencing the
	// entity as either endpoint, excluding availability edges.
	CountLinksForEntity(ctx context.Context, entityID id.EntityID) (int64, error)

	// DeleteLinksForEntity removes links of the given type referencing the
	// entity as either endpoint. An empty linkType removes all non-
	// availability links. Used by the cascade archive policy.
	DeleteLinksForEntity(ctx context.Context, entityID id.EntityID, linkType string) (int64, error)
}
