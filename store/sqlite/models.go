package sqlite

import (
	"encoding/json"
	"fmt"
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
	ID               string    `grove:"id,pk"`
	TenantID         string    `grove:"tenant_id,notnull"`
	Type             string    `grove:"type,notnull"`
	Subtype          string    `grove:"subtype"`
	Name             string    `grove:"name,notnull"`
	Description      string    `grove:"description"`
	Status           string    `grove:"status,notnull"`
	CustomProperties string    `grove:"custom_properties"` // JSON text
	CreatedBy        string    `grove:"created_by"`
	CreatedAt        time.Time `grove:"created_at,notnull"`
	UpdatedAt        time.Time `grove:"updated_at,notnull"`
}

func entityToModel(e *entity.Entity) (*entityModel, error) {
	props, err := json.Marshal(e.CustomProperties)
	if err != nil {
		return nil, fmt.Errorf("marshal entity properties: %w", err)
	}
	return &entityModel{
		ID:               e.ID.String(),
		TenantID:         e.TenantID,
		Type:             e.Type,
		Subtype:          e.Subtype,
		Name:             e.Name,
		Description:      e.Description,
		Status:           string(e.Status),
		CustomProperties: string(props),
		CreatedBy:        e.CreatedBy,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}, nil
}

func entityFromModel(m *entityModel) (*entity.Entity, error) {
	eid, _ := id.ParseEntityID(m.ID) //nolint:errcheck // stored IDs are always valid
	var props map[string]any
	if m.CustomProperties != "" {
		if err := json.Unmarshal([]byte(m.CustomProperties), &props); err != nil {
			return nil, fmt.Errorf("unmarshal entity properties: %w", err)
		}
	}
	return &entity.Entity{
		ID:               eid,
		TenantID:         m.TenantID,
		Type:             m.Type,
		Subtype:          m.Subtype,
		Name:             m.Name,
		Description:      m.Description,
		Status:           entity.Status(m.Status),
		CustomProperties: props,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Link model
// ──────────────────────────────────────────────────

type linkModel struct {
	grove.BaseModel `grove:"table:fabric_links"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	SourceID        string    `grove:"source_id,notnull"`
	TargetID        string    `grove:"target_id,notnull"`
	LinkType        string    `grove:"link_type,notnull"`
	Attrs           string    `grove:"attrs"` // JSON text
	CreatedBy       string    `grove:"created_by"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func linkToModel(l *link.Link) (*linkModel, error) {
	attrs, err := json.Marshal(l.Attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal link attrs: %w", err)
	}
	return &linkModel{
		ID:        l.ID.String(),
		TenantID:  l.TenantID,
		SourceID:  l.SourceID.String(),
		TargetID:  l.TargetID.String(),
		LinkType:  l.LinkType,
		Attrs:     string(attrs),
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}, nil
}

func linkFromModel(m *linkModel) (*link.Link, error) {
	lid, _ := id.ParseLinkID(m.ID)         //nolint:errcheck // stored IDs are always valid
	sid, _ := id.ParseEntityID(m.SourceID) //nolint:errcheck // stored IDs are always valid
	tid, _ := id.ParseEntityID(m.TargetID) //nolint:errcheck // stored IDs are always valid
	var attrs map[string]any
	if m.Attrs != "" {
		if err := json.Unmarshal([]byte(m.Attrs), &attrs); err != nil {
			return nil, fmt.Errorf("unmarshal link attrs: %w", err)
		}
	}
	return &link.Link{
		ID:        lid,
		TenantID:  m.TenantID,
		SourceID:  sid,
		TargetID:  tid,
		LinkType:  m.LinkType,
		Attrs:     attrs,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}, nil
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
	ID              string    `grove:"id,pk"`
	Type            string    `grove:"type,notnull"`
	Subtype         string    `grove:"subtype"`
	Description     string    `grove:"description"`
	Fields          string    `grove:"fields"`   // JSON text
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func schemaToModel(d *schema.Definition) (*schemaModel, error) {
	fields, err := json.Marshal(d.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal schema fields: %w", err)
	}
	metadata, err := json.Marshal(d.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal schema metadata: %w", err)
	}
	return &schemaModel{
		ID:          d.ID.String(),
		Type:        d.Type,
		Subtype:     d.Subtype,
		Description: d.Description,
		Fields:      string(fields),
		Metadata:    string(metadata),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func schemaFromModel(m *schemaModel) (*schema.Definition, error) {
	sid, _ := id.ParseSchemaID(m.ID) //nolint:errcheck // stored IDs are always valid
	var fields []schema.FieldDef
	if m.Fields != "" {
		if err := json.Unmarshal([]byte(m.Fields), &fields); err != nil {
			return nil, fmt.Errorf("unmarshal schema fields: %w", err)
		}
	}
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal schema metadata: %w", err)
		}
	}
	return &schema.Definition{
		ID:          sid,
		Type:        m.Type,
		Subtype:     m.Subtype,
		Description: m.Description,
		Fields:      fields,
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Action log model
// ──────────────────────────────────────────────────

type actionModel struct {
	grove.BaseModel `grove:"table:fabric_actions"`
	ID              string    `grove:"id,pk"`
	ActorID         string    `grove:"actor_id,notnull"`
	TenantID        string    `grove:"tenant_id"`
	Action          string    `grove:"action,notnull"`
	ResourceRef     string    `grove:"resource_ref"`
	Outcome         string    `grove:"outcome,notnull"`
	Elevated        bool      `grove:"elevated,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func actionToModel(r *actionlog.Record) (*actionModel, error) {
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal action metadata: %w", err)
	}
	return &actionModel{
		ID:          r.ID.String(),
		ActorID:     r.ActorID,
		TenantID:    r.TenantID,
		Action:      r.Action,
		ResourceRef: r.ResourceRef,
		Outcome:     string(r.Outcome),
		Elevated:    r.Elevated,
		Metadata:    string(metadata),
		CreatedAt:   r.CreatedAt,
	}, nil
}

func actionFromModel(m *actionModel) (*actionlog.Record, error) {
	aid, _ := id.ParseActionID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal action metadata: %w", err)
		}
	}
	return &actionlog.Record{
		ID:          aid,
		ActorID:     m.ActorID,
		TenantID:    m.TenantID,
		Action:      m.Action,
		ResourceRef: m.ResourceRef,
		Outcome:     actionlog.Outcome(m.Outcome),
		Elevated:    m.Elevated,
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
	}, nil
}
