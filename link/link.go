// Package link defines the Link record (a typed, directed edge between two
// entities) and its store interface.
//
// Links are the only sanctioned way to associate two entities across
// domains. Direction is semantically meaningful: A "installs" B is not the
// same edge as B "installs" A.
package link

import (
	"time"

	"github.com/xraph/fabric/id"
)

// AvailabilityType is the reserved link type for availability edges:
// a self-edge on a system-owned entity, stored in the consuming tenant's
// scope with Attrs["enabled"] holding the switch. Absent edge = disabled.
const AvailabilityType = "available_to"

// Link is a typed, directed edge between two entities.
//
// The (TenantID, SourceID, TargetID, LinkType) quadruple is unique:
// creating the same edge twice fails with a conflict rather than silently
// producing a duplicate.
type Link struct {
	ID        id.LinkID      `json:"id" db:"id"`
	TenantID  string         `json:"tenant_id" db:"tenant_id"`
	SourceID  id.EntityID    `json:"source_id" db:"source_id"`
	TargetID  id.EntityID    `json:"target_id" db:"target_id"`
	LinkType  string         `json:"link_type" db:"link_type"`
	Attrs     map[string]any `json:"attrs,omitempty" db:"attrs"`
	CreatedBy string         `json:"created_by" db:"created_by"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// Enabled reports whether an availability edge currently enables its
// resource. Only meaningful for links of AvailabilityType.
func (l *Link) Enabled() bool {
	if l == nil || l.Attrs == nil {
		return false
	}
	v, ok := l.Attrs["enabled"].(bool)
	return ok && v
}

// ListFilter contains filters for listing links.
type ListFilter struct {
	TenantID string      `json:"tenant_id,omitempty"`
	SourceID id.EntityID `json:"source_id,omitempty"`
	TargetID id.EntityID `json:"target_id,omitempty"`
	LinkType string      `json:"link_type,omitempty"`
	Limit    int         `json:"limit,omitempty"`
	Offset   int         `json:"offset,omitempty"`
}

// ArchiveAction is the per-link-type policy applied when an entity with
// active links is archived.
type ArchiveAction string

const (
	// ArchiveBlock rejects the archive while links of this type reference
	// the entity. This is the default.
	ArchiveBlock ArchiveAction = "block"

	// ArchiveCascade hard-deletes links of this type when an endpoint is
	// archived.
	ArchiveCascade ArchiveAction = "cascade"
)

// Policy holds the archive behavior for one link type.
type Policy struct {
	LinkType  string        `json:"link_type"`
	OnArchive ArchiveAction `json:"on_archive"`
}
