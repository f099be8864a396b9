// Package fabric provides the multi-tenant entity/relationship core that
// underlies every vertical feature of the platform.
//
// All domain objects are stored as typed, attribute-flexible entities
// connected by typed, directed links. Every read and write is routed
// through context resolution, permission evaluation, and tenant scoping
// before it touches data, and every mutation or denial is written to an
// append-only action log.
//
//	eng, err := fabric.NewEngine(
//	    fabric.WithStore(memStore),
//	)
//	ctx := fabric.WithActor(context.Background(), "user_123")
//	ent, err := eng.CreateEntity(ctx, &fabric.CreateEntityRequest{
//	    Type:    "product",
//	    Subtype: "ticketed_event",
//	    Name:    "Spring Gala",
//	})
package fabric

import "github.com/xraph/fabric/id"

// SystemTenant is the sentinel tenant that owns platform-level records
// (global catalog templates, app registrations). System-owned entities may
// be referenced, but never mutated, by other tenants, and only become
// visible to a tenant through an explicit availability edge.
const SystemTenant = "system"

// Context is a resolved actor context. It is the unit every permission
// and scoping decision operates on, and is recomputed from membership data
// on each request — never cached across calls.
type Context struct {
	ActorID  string `json:"actor_id"`
	TenantID string `json:"tenant_id,omitempty"` // empty for global elevated contexts
	Role     Role   `json:"role"`
	Elevated bool   `json:"elevated"` // permitted to bypass tenant scoping; always logged
}

// Direction selects which endpoint of a link a traversal starts from.
type Direction string

const (
	// DirectionForward follows links from source to target.
	DirectionForward Direction = "forward"

	// DirectionBackward follows links from target to source.
	DirectionBackward Direction = "backward"
)

// Decision is the outcome of a permission evaluation. The evaluator is
// side-effect-free; the engine logs denials.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CreateEntityRequest is the input to Engine.CreateEntity.
type CreateEntityRequest struct {
	Type             string         `json:"type"`
	Subtype          string         `json:"subtype"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	CustomProperties map[string]any `json:"custom_properties,omitempty"`
}

// EntityPatch is the input to Engine.UpdateEntity. Nil fields are left
// unchanged; CustomProperties, when set, replaces the map wholesale.
// Type, Subtype, and TenantID are present only so that attempts to change
// them can be rejected explicitly — they are immutable.
type EntityPatch struct {
	Name             *string        `json:"name,omitempty"`
	Description      *string        `json:"description,omitempty"`
	Status           *string        `json:"status,omitempty"`
	CustomProperties map[string]any `json:"custom_properties,omitempty"`

	Type     *string `json:"type,omitempty"`
	Subtype  *string `json:"subtype,omitempty"`
	TenantID *string `json:"tenant_id,omitempty"`
}

// CreateLinkRequest is the input to Engine.CreateLink.
type CreateLinkRequest struct {
	SourceID id.EntityID    `json:"source_id"`
	TargetID id.EntityID    `json:"target_id"`
	LinkType string         `json:"link_type"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}
