package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
	"github.com/xraph/fabric/schema"
)

// ──────────────────────────────────────────────────
// Entity model
// ──────────────────────────────────────────────────

type entityModel struct {
	grove.BaseModel  `grove:"table:fabric_entities"`
	ID               string         `grove:"id,pk"`
	TenantID         string         `grove:"tenant_id,notnull"`
	Type             string         `grove:"type,notnull"`
	Subtype          string         `grove:"subtype"`
	Name             string         `grove:"name,notnull"`
	Description      string         `grove:"description"`
	Status           string         `grove:"status,notnull"`
	CustomProperties map[string]any `grove:"custom_properties,type:jsonb"`
	CreatedBy        string         `grove:"created_by"`
	CreatedAt        time.Time      `grove:"created_at,notnull"`
	UpdatedAt        time.Time      `grove:"updated_at,notnull"`
}

func entityToModel(e *entity.Entity) *entityModel {
	return &entityModel{
		ID:               e.ID.String(),
		TenantID:         e.TenantID,
		Type:             e.Type,
		Subtype:          e.Subtype,
		Name:             e.Name,
		Description:      e.Description,
		Status:           string(e.Status),
		CustomProperties: e.CustomProperties,
		CreatedBy:        e.CreatedBy,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func entityFromModel(m *entityModel) *entity.Entity {
	eid, _ := id.ParseEntityID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &entity.Entity{
		ID:               eid,
		TenantID:         m.TenantID,
		Type:             m.Type,
		Subtype:          m.Subtype,
		Name:             m.Name,
		Description:      m.Description,
		Status:           entity.Status(m.Status),
		CustomProperties: m.CustomProperties,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Link model
// ──────────────────────────────────────────────────

type linkModel struct {
	grove.BaseModel `grove:"table:fabric_links"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	SourceID        string         `grove:"source_id,notnull"`
	TargetID        string         `grove:"target_id,notnull"`
	LinkType        string         `grove:"link_type,notnull"`
	Attrs           map[string]any `grove:"attrs,type:jsonb"`
	CreatedBy       string         `grove:"created_by"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func linkToModel(l *link.Link) *linkModel {
	return &linkModel{
		ID:        l.ID.String(),
		TenantID:  l.TenantID,
		SourceID:  l.SourceID.String(),
		TargetID:  l.TargetID.String(),
		LinkType:  l.LinkType,
		Attrs:     l.Attrs,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}
}

func linkFromModel(m *linkModel) *link.Link {
	lid, _ := id.ParseLinkID(m.ID)         //nolint:errcheck // stored IDs are always valid
	sid, _ := id.ParseEntityID(m.SourceID) //nolint:errcheck // stored IDs are always valid
	tid, _ := id.ParseEntityID(m.TargetID) //nolint:errcheck // stored IDs are always valid
	return &link.Link{
		ID:        lid,
		TenantID:  m.TenantID,
		SourceID:  sid,
		TargetID:  tid,
		LinkType:  m.LinkType,
		Attrs:     m.Attrs,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Membership model
// ──────────────────────────────────────────────────

type membershipModel struct {
	grove.BaseModel `grove:"table:fabric_memberships"`
	ID              string    `grove:"id,pk"`
	ActorID         string    `grove:"actor_id,notnull"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Role            string    `grove:"role,notnull"`
	GrantedBy       string    `grove:"granted_by"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func membershipToModel(m *membership.Membership) *membershipModel {
	return &membershipModel{
		ID:        m.ID.String(),
		ActorID:   m.ActorID,
		TenantID:  m.TenantID,
		Role:      m.Role,
		GrantedBy: m.GrantedBy,
		CreatedAt: m.CreatedAt,
	}
}

func membershipFromModel(m *membershipModel) *membership.Membership {
	mid, _ := id.ParseMembershipID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &membership.Membership{
		ID:        mid,
		ActorID:   m.ActorID,
		TenantID:  m.TenantID,
		Role:      m.Role,
		GrantedBy: m.GrantedBy,
		CreatedAt: m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Schema model
// ──────────────────────────────────────────────────

type schemaModel struct {
	grove.BaseModel `grove:"table:fabric_schemas"`
	ID              string            `grove:"id,pk"`
	Type            string            `grove:"type,notnull"`
	Subtype         string            `grove:"subtype"`
	Description     string            `grove:"description"`
	Fields          []schema.FieldDef `grove:"fields,type:jsonb"`
	Metadata        map[string]any    `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time         `grove:"created_at,notnull"`
	UpdatedAt       time.Time         `grove:"updated_at,notnull"`
}

func schemaToModel(d *schema.Definition) *schemaModel {
	return &schemaModel{
		ID:          d.ID.String(),
		Type:        d.Type,
		Subtype:     d.Subtype,
		Description: d.Description,
		Fields:      d.Fields,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func schemaFromModel(m *schemaModel) *schema.Definition {
	sid, _ := id.ParseSchemaID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &schema.Definition{
		ID:          sid,
		Type:        m.Type,
		Subtype:     m.Subtype,
		Description: m.Description,
		Fields:      m.Fields,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Action log model
// ──────────────────────────────────────────────────

type actionModel struct {
	grove.BaseModel `grove:"table:fabric_actions"`
	ID              string         `grove:"id,pk"`
	ActorID         string         `grove:"actor_id,notnull"`
	TenantID        string         `grove:"tenant_id"`
	Action          string         `grove:"action,notnull"`
	ResourceRef     string         `grove:"resource_ref"`
	Outcome         string         `grove:"outcome,notnull"`
	Elevated        bool           `grove:"elevated,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func actionToModel(r *actionlog.Record) *actionModel {
	return &actionModel{
		ID:          r.ID.String(),
		ActorID:     r.ActorID,
		TenantID:    r.TenantID,
		Action:      r.Action,
		ResourceRef: r.ResourceRef,
		Outcome:     string(r.Outcome),
		Elevated:    r.Elevated,
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
	}
}

func actionFromModel(m *actionModel) *actionlog.Record {
	aid, _ := id.ParseActionID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &actionlog.Record{
		ID:          aid,
		ActorID:     m.ActorID,
		TenantID:    m.TenantID,
		Action:      m.Action,
		ResourceRef: m.ResourceRef,
		Outcome:     actionlog.Outcome(m.Outcome),
		Elevated:    m.Elevated,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
	}
}
