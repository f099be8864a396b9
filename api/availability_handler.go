package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/fabric/id"
)

func (a *API) registerAvailabilityRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("availability"))

	return g.PUT("/entities/:entityId/availability", a.setAvailability,
		forge.WithSummary("Set availability"),
		forge.WithDescription("Shares a system-owned entity into a tenant's scope, or flips the enabled switch on an existing share. Requires an elevated context."),
		forge.WithOperationID("setAvailability"),
		forge.WithRequestSchema(SetAvailabilityRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) setAvailability(ctx forge.Context, req *SetAvailabilityRequest) (*struct{}, error) {
	entityID, err := id.ParseEntityID(ctx.Param("entityId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid entity ID: %v", err))
	}
	if req.TenantID == "" {
		return nil, forge.BadRequest("tenant_id is required")
	}

	if err := a.eng.SetAvailability(ctx.Context(), req.TenantID, entityID, req.Enabled); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
