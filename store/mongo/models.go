package mongo

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
	ID               string         `grove:"id,pk"             bson:"_id"`
	TenantID         string         `grove:"tenant_id"         bson:"tenant_id"`
	Type             string         `grove:"type"              bson:"type"`
	Subtype          string         `grove:"subtype"           bson:"subtype"`
	Name             string         `grove:"name"              bson:"name"`
	Description      string         `grove:"description"       bson:"description"`
	Status           string         `grove:"status"            bson:"status"`
	CustomProperties map[string]any `grove:"custom_properties" bson:"custom_properties,omitempty"`
	CreatedBy        string         `grove:"created_by"        bson:"created_by"`
	CreatedAt        time.Time      `grove:"created_at"        bson:"created_at"`
	UpdatedAt        time.Time      `grove:"updated_at"        bson:"updated_at"`
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
	ID              string         `grove:"id,pk"      bson:"_id"`
	TenantID        string         `grove:"tenant_id"  bson:"tenant_id"`
	SourceID        string         `grove:"source_id"  bson:"source_id"`
	TargetID        string         `grove:"target_id"  bson:"target_id"`
	LinkType        string         `grove:"link_type"  bson:"link_type"`
	Attrs           map[string]any `grove:"attrs"      bson:"attrs,omitempty"`
	CreatedBy       string         `grove:"created_by" bson:"created_by"`
	CreatedAt       time.Time      `grove:"created_at" bson:"created_at"`
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
	ID              string    `grove:"id,pk"      bson:"_id"`
	ActorID         string    `grove:"actor_id"   bson:"actor_id"`
	TenantID        string    `grove:"tenant_id"  bson:"tenant_id"`
	Role            string    `grove:"role"       bson:"role"`
	GrantedBy       string    `grove:"granted_by" bson:"granted_by"`
	CreatedAt       time.Time `grove:"created_at" bson:"created_at"`
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
	ID              string            `grove:"id,pk"       bson:"_id"`
	Type            string            `grove:"type"        bson:"type"`
	Subtype         string            `grove:"subtype"     bson:"subtype"`
	Description     string            `grove:"description" bson:"description"`
	Fields          []schema.FieldDef `grove:"fields"      bson:"fields,omitempty"`
	Metadata        map[string]any    `grove:"metadata"    bson:"metadata,omitempty"`
	CreatedAt       time.Time         `grove:"created_at"  bson:"created_at"`
	UpdatedAt       time.Time         `grove:"updated_at"  bson:"updated_at"`
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
	ID              string         `grove:"id,pk"        bson:"_id"`
	ActorID         string         `grove:"actor_id"     bson:"actor_id"`
	TenantID        string         `grove:"tenant_id"    bson:"tenant_id"`
	Action          string         `grove:"action"       bson:"action"`
	ResourceRef     string         `grove:"resource_ref" bson:"resource_ref"`
	Outcome         string         `grove:"outcome"      bson:"outcome"`
	Elevated        bool           `grove:"elevated"     bson:"elevated"`
	Metadata        map[string]any `grove:"metadata"     bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"   bson:"created_at"`
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
