// Package actionlog defines the append-only audit Record.
package actionlog

import (
	"time"

	"github.com/xraph/fabric/id"
)

// Outcome classifies how an operation ended.
type Outcome string

const (
	// OutcomeSuccess marks a completed mutation.
	OutcomeSuccess Outcome = "success"

	// OutcomeDenied marks a permission denial or scope violation. Denied
	// attempts are recorded so they are as visible as successful changes.
	OutcomeDenied Outcome = "denied"

	// OutcomeError marks an operation that failed after authorization.
	OutcomeError Outcome = "error"
)

// Record is a single audit entry. Records are append-only: they are never
// mutated or deleted by normal operation.
type Record struct {
	ID          id.ActionID    `json:"id" db:"id"`
	ActorID     string         `json:"actor_id" db:"actor_id"`
	TenantID    string         `json:"tenant_id,omitempty" db:"tenant_id"` // empty for global actions
	Action      string         `json:"action" db:"action"`
	ResourceRef string         `json:"resource_ref" db:"resource_ref"`
	Outcome     Outcome        `json:"outcome" db:"outcome"`
	Elevated    bool           `json:"elevated" db:"elevated"` // tenant-scope bypass was in effect
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for compliance queries over the log.
type QueryFilter struct {
	TenantID string     `json:"tenant_id,omitempty"`
	ActorID  string     `json:"actor_id,omitempty"`
	Action   string     `json:"action,omitempty"`
	Outcome  Outcome    `json:"outcome,omitempty"`
	After    *time.Time `json:"after,omitempty"`
	Before   *time.Time `json:"before,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}
