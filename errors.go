package fabric

import "errors"

// The five error kinds every caller can distinguish with errors.Is.
// Specific failures wrap one of these at the call site.
var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible under the current scope. The two cases are deliberately
	// indistinguishable so callers cannot probe other tenants' data.
	ErrNotFound = errors.New("fabric: not found")

	// ErrValidation is returned for attempts to mutate an immutable field
	// or for attribute payloads that fail schema validation.
	ErrValidation = errors.New("fabric: validation failed")

	// ErrPermissionDenied is returned when the permission evaluator denies
	// a capability. Always written to the action log.
	ErrPermissionDenied = errors.New("fabric: permission denied")

	// ErrScopeViolation is returned when an operation would cross tenant
	// boundaries without an elevated context or a valid availability edge.
	// Always written to the action log.
	ErrScopeViolation = errors.New("fabric: tenant scope violation")

	// ErrConflict is returned for duplicate link creation and for
	// concurrent-update contention on the same entity. Never retried by
	// the core; retry policy belongs to the caller.
	ErrConflict = errors.New("fabric: conflict")
)

var (
	// ErrTraversalDepthExceeded is returned when a graph traversal exceeds
	// the configured maximum depth.
	ErrTraversalDepthExceeded = errors.New("fabric: traversal depth exceeded")
)
