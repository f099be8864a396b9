package schema

import (
	"context"

	"github.com/xraph/fabric/id"
)

// Store defines persistence operations for schema definitions.
// Definitions are platform-owned: they are keyed by (type, subtype) with no
// tenant column, and only elevated contexts may change them.
type Store interface {
	// CreateDefinition persists a new definition. It fails with a conflict
	// error when the (type, subtype) pair is already registered.
	CreateDefinition(ctx context.Context, d *Definition) error

	// GetDefinition retrieves a definition by (type, subtype).
	GetDefinition(ctx context.Context, entityType, subtype string) (*Definition, error)

	// UpdateDefinition persists changes to a definition's fields.
	UpdateDefinition(ctx context.Context, d *Definition) error

	// DeleteDefinition removes a definition by ID.
	DeleteDefinition(ctx context.Context, schemaID id.SchemaID) error

	// ListDefinitions returns definitions matching the filter.
	ListDefinitions(ctx context.Context, filter *ListFilter) ([]*Definition, error)
}
