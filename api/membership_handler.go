package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/fabric"
	"github.com/xraph/fabric/membership"
)

func (a *API) registerMembershipRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("memberships"))

	if err := g.POST("/memberships", a.grantRole,
		forge.WithSummary("Grant role"),
		forge.WithDescription("Gives an actor a role in the caller's tenant, replacing any existing membership there. Grantors may only hand out roles strictly below their own."),
		forge.WithOperationID("grantRole"),
		forge.WithRequestSchema(GrantRoleRequest{}),
		forge.WithCreatedResponse(&membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/memberships/:actorId", a.revokeRole,
		forge.WithSummary("Revoke role"),
		forge.WithDescription("Removes an actor's membership in the caller's tenant. The caller must outrank the membership being revoked."),
		forge.WithOperationID("revokeRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/memberships", a.listMemberships,
		forge.WithSummary("List memberships"),
		forge.WithDescription("Lists role bindings in the caller's tenant."),
		forge.WithOperationID("listMemberships"),
		forge.WithRequestSchema(ListMembershipsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Membership list", []*membership.Membership{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) grantRole(ctx forge.Context, req *GrantRoleRequest) (*membership.Membership, error) {
	if req.ActorID == "" {
		return nil, forge.BadRequest("actor_id is required")
	}
	if req.Role == "" {
		return nil, forge.BadRequest("role is required")
	}

	m, err := a.eng.GrantRole(ctx.Context(), req.ActorID, fabric.Role(req.Role))
	if err != nil {
		return nil, mapError(err)
	}

	return m, ctx.JSON(http.StatusCreated, m)
}

func (a *API) revokeRole(ctx forge.Context, _ *RevokeRoleRequest) (*struct{}, error) {
	actorID := ctx.Param("actorId")
	if actorID == "" {
		return nil, forge.BadRequest("actor ID is required")
	}

	if err := a.eng.RevokeRole(ctx.Context(), actorID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listMemberships(ctx forge.Context, req *ListMembershipsRequest) ([]*membership.Membership, error) {
	filter := &membership.ListFilter{
		ActorID: req.ActorID,
		Role:    req.Role,
		Limit:   defaultLimit(req.Limit),
		Offset:  req.Offset,
	}

	members, err := a.eng.Memberships(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return members, ctx.JSON(http.StatusOK, members)
}
