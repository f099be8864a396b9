package api

import (
	"errors"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/fabric"
)

func (a *API) registerAuthzRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	return g.POST("/check", a.check,
		forge.WithSummary("Capability check"),
		forge.WithDescription("Resolves the calling actor's context and evaluates whether it holds the given capability. Denials are written to the action log."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.Capability == "" {
		return nil, forge.BadRequest("capability is required")
	}

	rc, err := a.eng.Check(ctx.Context(), req.Capability, req.ResourceRef)
	if err != nil {
		if errors.Is(err, fabric.ErrPermissionDenied) {
			resp := &CheckResponse{Allowed: false, Reason: err.Error()}
			return resp, ctx.JSON(http.StatusOK, resp)
		}
		return nil, mapError(err)
	}

	resp := &CheckResponse{
		Allowed: true,
		Context: &ContextResponse{
			ActorID:  rc.ActorID,
			TenantID: rc.TenantID,
			Role:     string(rc.Role),
			Elevated: rc.Elevated,
		},
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
