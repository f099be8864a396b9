// Package middleware provides HTTP capability middleware for fabric.
package middleware

import (
	"context"
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/fabric"
)

// Require enforces a capability before the handler runs. The acting
// identity comes from the request context (Authsome user when present,
// otherwise whatever fabric.WithActor installed upstream); the :id route
// parameter, when present, shapes the denial reason. Denials are written
// to the action log by the engine.
func Require(eng *fabric.Engine, capability string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			if _, err := eng.Check(actorContext(ctx), capability, ctx.Param("id")); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if the actor holds ANY of the capabilities.
func RequireAny(eng *fabric.Engine, capabilities ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			for _, c := range capabilities {
				if _, err := eng.Check(actorContext(ctx), c, ctx.Param("id")); err == nil {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if the actor holds ALL of the
// capabilities.
func RequireAll(eng *fabric.Engine, capabilities ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			for _, c := range capabilities {
				if _, err := eng.Check(actorContext(ctx), c, ctx.Param("id")); err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// actorContext binds the authenticated user to the context the engine
// resolves its actor from. Priority: Forge user ID (from Authsome) → an
// actor already installed via fabric.WithActor.
func actorContext(ctx forge.Context) context.Context {
	c := ctx.Context()
	if userID := forge.UserIDFromContext(c); userID != "" {
		return fabric.WithActor(c, userID)
	}
	return c
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
