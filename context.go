package fabric

import "context"

type contextKey int

const (
	ctxKeyActorID contextKey = iota
	ctxKeyTenantID
)

// WithActor returns a context carrying the authenticated actor ID.
// The HTTP/API-key layer is responsible for turning a bearer credential
// into an actor ID before calling this core.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ctxKeyActorID, actorID)
}

// WithTenant returns a context carrying a requested tenant ID.
// Use this for standalone mode (without Forge) and for elevated
// "act as tenant X" operations.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKeyTenantID, tenantID)
}

func actorIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyActorID).(string)
	if !ok {
		return ""
	}
	return v
}

func tenantIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyTenantID).(string)
	if !ok {
		return ""
	}
	return v
}
