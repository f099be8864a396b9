package fabric

import (
	"context"

	"github.com/xraph/forge"
)

type requestScope struct {
	actorID  string
	tenantID string
}

// scopeFromContext extracts the actor and requested tenant from forge.Scope
// or the standalone context keys. Falls back to explicit values if Forge
// scope is not set (standalone mode).
func scopeFromContext(ctx context.Context) requestScope {
	rs := requestScope{
		actorID:  actorIDFromContext(ctx),
		tenantID: tenantIDFromContext(ctx),
	}
	if s, ok := forge.ScopeFrom(ctx); ok {
		if rs.tenantID == "" {
			rs.tenantID = s.OrgID()
		}
	}
	if rs.actorID == "" {
		rs.actorID = forge.UserIDFromContext(ctx)
	}
	return rs
}
