package api

// ──────────────────────────────────────────────────
// Authorization requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for a capability pre-flight check.
type CheckRequest struct {
	Capability  string `json:"capability" description:"Capability name (resource:action)"`
	ResourceRef string `json:"resource_ref,omitempty" description:"Resource reference the check is about"`
}

// ──────────────────────────────────────────────────
// Entity requests
// ──────────────────────────────────────────────────

// CreateEntityRequest is the body for creating an entity.
type CreateEntityRequest struct {
	Type             string         `json:"type" description:"Entity type (e.g. product)"`
	Subtype          string         `json:"subtype" description:"Entity subtype (e.g. ticketed_event)"`
	Name             string         `json:"name" description:"Display name"`
	Description      string         `json:"description,omitempty" description:"Human-readable description"`
	CustomProperties map[string]any `json:"custom_properties,omitempty" description:"Schema-validated attribute payload"`
}

// UpdateEntityRequest is the body for updating an entity. Absent fields
// are left unchanged.
type UpdateEntityRequest struct {
	Name             *string        `json:"name,omitempty" description:"Display name"`
	Description      *string        `json:"description,omitempty" description:"Human-readable description"`
	Status           *string        `json:"status,omitempty" description:"Lifecycle status (draft, active, archived)"`
	CustomProperties map[string]any `json:"custom_properties,omitempty" description:"Replacement attribute payload"`
}

// GetEntityRequest is the path parameter for getting an entity.
type GetEntityRequest struct {
	EntityID string `path:"entityId" description:"Entity ID"`
}

// ListEntitiesRequest holds query parameters for listing entities.
type ListEntitiesRequest struct {
	Type    string `query:"type" description:"Filter by entity type"`
	Subtype string `query:"subtype" description:"Filter by subtype"`
	Status  string `query:"status" description:"Filter by lifecycle status"`
	Search  string `query:"search" description:"Search by name"`
	Limit   int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset  int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Link requests
// ──────────────────────────────────────────────────

// CreateLinkRequest is the body for creating a link.
type CreateLinkRequest struct {
	SourceID string         `json:"source_id" description:"Source entity ID"`
	TargetID string         `json:"target_id" description:"Target entity ID"`
	LinkType string         `json:"link_type" description:"Link type (e.g. depends_on)"`
	Attrs    map[string]any `json:"attrs,omitempty" description:"Edge attributes"`
}

// GetLinkRequest is the path parameter for deleting a link.
type GetLinkRequest struct {
	LinkID string `path:"linkId" description:"Link ID"`
}

// ListEntityLinksRequest holds query parameters for listing an entity's
// links.
type ListEntityLinksRequest struct {
	EntityID  string `path:"entityId" description:"Entity ID"`
	LinkType  string `query:"link_type" description:"Filter by link type"`
	Direction string `query:"direction" description:"Edge direction relative to the entity (forward = outgoing, backward = incoming)"`
}

// TraverseRequest holds parameters for neighbor and reachability queries.
type TraverseRequest struct {
	EntityID  string `path:"entityId" description:"Starting entity ID"`
	LinkType  string `query:"link_type" description:"Link type to follow"`
	Direction string `query:"direction" description:"Traversal direction (forward or backward)"`
}

// ──────────────────────────────────────────────────
// Membership requests
// ──────────────────────────────────────────────────

// GrantRoleRequest is the body for granting a role to an actor.
type GrantRoleRequest struct {
	ActorID string `json:"actor_id" description:"Actor to grant the role to"`
	Role    string `json:"role" description:"Role name (must be strictly below the grantor's role)"`
}

// RevokeRoleRequest is the path parameter for revoking a role.
type RevokeRoleRequest struct {
	ActorID string `path:"actorId" description:"Actor whose membership is revoked"`
}

// ListMembershipsRequest holds query parameters for listing memberships.
type ListMembershipsRequest struct {
	ActorID string `query:"actor_id" description:"Filter by actor ID"`
	Role    string `query:"role" description:"Filter by role"`
	Limit   int    `query:"limit" description:"Maximum results"`
	Offset  int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Availability requests
// ──────────────────────────────────────────────────

// SetAvailabilityRequest is the body for sharing a system-owned entity
// into a tenant's scope.
type SetAvailabilityRequest struct {
	TenantID string `json:"tenant_id" description:"Tenant the entity is shared with"`
	Enabled  bool   `json:"enabled" description:"Whether the share is currently enabled"`
}

// ──────────────────────────────────────────────────
// Schema requests
// ──────────────────────────────────────────────────

// RegisterSchemaRequest is the body for registering a structural
// definition for a (type, subtype) pair.
type RegisterSchemaRequest struct {
	Type        string          `json:"type" description:"Entity type"`
	Subtype     string          `json:"subtype" description:"Entity subtype"`
	Description string          `json:"description,omitempty" description:"Human-readable description"`
	Fields      []FieldDefInput `json:"fields,omitempty" description:"Attribute field definitions"`
	Metadata    map[string]any  `json:"metadata,omitempty" description:"Custom metadata"`
}

// FieldDefInput is the input format for one attribute field definition.
type FieldDefInput struct {
	Name     string `json:"name" description:"Field name"`
	Kind     string `json:"kind" description:"Field kind (string, number, bool, object, list)"`
	Required bool   `json:"required,omitempty" description:"Whether the field must be present"`
}

// ListSchemasRequest holds query parameters for listing schema
// definitions.
type ListSchemasRequest struct {
	Type   string `query:"type" description:"Filter by entity type"`
	Search string `query:"search" description:"Search by type or subtype"`
	Limit  int    `query:"limit" description:"Maximum results"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Action log requests
// ──────────────────────────────────────────────────

// ListActionsRequest holds query parameters for querying the action log.
type ListActionsRequest struct {
	ActorID string `query:"actor_id" description:"Filter by actor ID"`
	Action  string `query:"action" description:"Filter by action name"`
	Outcome string `query:"outcome" description:"Filter by outcome (success, denied, error)"`
	After   string `query:"after" description:"After timestamp (RFC3339)"`
	Before  string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit   int    `query:"limit" description:"Maximum results"`
	Offset  int    `query:"offset" description:"Results to skip"`
}
