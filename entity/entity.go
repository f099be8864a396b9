// Package entity defines the Entity record and its store interface.
//
// An entity is a typed, tenant-owned record with a flexible attribute
// payload. All vertical features of the platform (contacts, products,
// tickets, events, checkout sessions, forms, templates, app registrations)
// store their domain objects as entities.
package entity

import (
	"time"

	"github.com/xraph/fabric/id"
)

// Status is the lifecycle tag of an entity.
type Status string

const (
	// StatusDraft marks a record that is not yet live.
	StatusDraft Status = "draft"

	// StatusActive marks a live record.
	StatusActive Status = "active"

	// StatusArchived is the terminal soft-delete state. Archived records
	// are never physically removed.
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusArchived:
		return true
	default:
		return false
	}
}

// Entity is a typed, attribute-flexible record owned by exactly one tenant.
//
// Type, Subtype, and TenantID are fixed at creation and never change.
// CustomProperties holds domain-specific fields not known to the core;
// its shape is validated against the schema registry, per (Type, Subtype).
type Entity struct {
	ID               id.EntityID    `json:"id" db:"id"`
	TenantID         string         `json:"tenant_id" db:"tenant_id"`
	Type             string         `json:"type" db:"type"`
	Subtype          string         `json:"subtype" db:"subtype"`
	Name             string         `json:"name" db:"name"`
	Description      string         `json:"description,omitempty" db:"description"`
	Status           Status         `json:"status" db:"status"`
	CustomProperties map[string]any `json:"custom_properties,omitempty" db:"custom_properties"`
	CreatedBy        string         `json:"created_by" db:"created_by"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing entities. TenantID is mandatory
// for non-elevated callers; the scoping layer fills it in before the store
// is reached.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	Type     string `json:"type,omitempty"`
	Subtype  string `json:"subtype,omitempty"`
	Status   Status `json:"status,omitempty"`
	Search   string `json:"search,omitempty"` // free-text match on name
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
