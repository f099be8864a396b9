// Package membership defines the actor↔tenant role binding that backs
// context resolution.
package membership

import (
	"time"

	"github.com/xraph/fabric/id"
)

// Membership binds an actor to a tenant with a single role.
// At most one membership exists per (actor, tenant) pair; changing an
// actor's role replaces the membership.
type Membership struct {
	ID        id.MembershipID `json:"id" db:"id"`
	ActorID   string          `json:"actor_id" db:"actor_id"`
	TenantID  string          `json:"tenant_id" db:"tenant_id"`
	Role      string          `json:"role" db:"role"`
	GrantedBy string          `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing memberships.
type ListFilter struct {
	ActorID  string `json:"actor_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
