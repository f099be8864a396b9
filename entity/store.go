package entity

import (
	"context"

	"github.com/xraph/fabric/id"
)

// Store defines persistence operations for entities.
//
// The store performs no authorization: tenancy and permission checks are
// layered above it by the engine. Lookups must be efficient by
// (tenant, type), (tenant, type, subtype), and free-text on name.
type Store interface {
	// CreateEntity persists a new entity.
	CreateEntity(ctx context.Context, e *Entity) error

	// GetEntity retrieves an entity by ID regardless of tenant.
	GetEntity(ctx context.Context, entityID id.EntityID) (*Entity, error)

	// UpdateEntity persists changes to an entity using optimistic
	// concurrency: the write only succeeds if the stored updated_at still
	// matches e.UpdatedAt. On contention it returns a conflict error, so
	// of two concurrent updates exactly one wins.
	UpdateEntity(ctx context.Context, e *Entity) error

	// ListEntities returns entities matching the filter.
	ListEntities(ctx context.Context, filter *ListFilter) ([]*Entity, error)

	// CountEntities returns the number of entities matching the filter.
	CountEntities(ctx context.Context, filter *ListFilter) (int64, error)
}
