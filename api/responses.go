package api

// CheckResponse is the response for a capability pre-flight check.
type CheckResponse struct {
	Allowed bool             `json:"allowed" description:"Whether the capability is granted"`
	Reason  string           `json:"reason,omitempty" description:"Human-readable denial reason"`
	Context *ContextResponse `json:"context,omitempty" description:"Resolved actor context when allowed"`
}

// ContextResponse describes the resolved actor context a decision was
// made under.
type ContextResponse struct {
	ActorID  string `json:"actor_id" description:"Acting identity"`
	TenantID string `json:"tenant_id,omitempty" description:"Tenant the context is scoped to (empty when elevated globally)"`
	Role     string `json:"role" description:"Resolved role"`
	Elevated bool   `json:"elevated" description:"Whether tenant scoping is bypassed"`
}
