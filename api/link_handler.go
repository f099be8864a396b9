package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/fabric"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
)

func (a *API) registerLinkRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("links"))

	if err := g.POST("/links", a.createLink,
		forge.WithSummary("Create link"),
		forge.WithDescription("Creates a typed, directed link between two entities visible under the caller's scope."),
		forge.WithOperationID("createLink"),
		forge.WithRequestSchema(CreateLinkRequest{}),
		forge.WithCreatedResponse(&link.Link{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/links/:linkId", a.deleteLink,
		forge.WithSummary("Delete link"),
		forge.WithDescription("Deletes a link."),
		forge.WithOperationID("deleteLink"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/entities/:entityId/links", a.listEntityLinks,
		forge.WithSummary("List entity links"),
		forge.WithDescription("Lists links attached to an entity, outgoing by default."),
		forge.WithOperationID("listEntityLinks"),
		forge.WithRequestSchema(ListEntityLinksRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Link list", []*link.Link{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/entities/:entityId/neighbors", a.neighbors,
		forge.WithSummary("List neighbors"),
		forge.WithDescription("Returns entities one hop away along links of the given type."),
		forge.WithOperationID("listNeighbors"),
		forge.WithRequestSchema(TraverseRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Neighbor entities", []*entity.Entity{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/entities/:entityId/reachable", a.reachable,
		forge.WithSummary("List reachable entities"),
		forge.WithDescription("Returns all entities transitively reachable along links of the given type, up to the configured depth limit."),
		forge.WithOperationID("listReachable"),
		forge.WithRequestSchema(TraverseRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Reachable entities", []*entity.Entity{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createLink(ctx forge.Context, req *CreateLinkRequest) (*link.Link, error) {
	if req.LinkType == "" {
		return nil, forge.BadRequest("link_type is required")
	}
	sourceID, err := id.ParseEntityID(req.SourceID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid source_id: %v", err))
	}
	targetID, err := id.ParseEntityID(req.TargetID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid target_id: %v", err))
	}

	l, err := a.eng.CreateLink(ctx.Context(), &fabric.CreateLinkRequest{
		SourceID: sourceID,
		TargetID: targetID,
		LinkType: req.LinkType,
		Attrs:    req.Attrs,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return l, ctx.JSON(http.StatusCreated, l)
}

func (a *API) deleteLink(ctx forge.Context, _ *GetLinkRequest) (*struct{}, error) {
	linkID, err := id.ParseLinkID(ctx.Param("linkId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid link ID: %v", err))
	}

	if err := a.eng.DeleteLink(ctx.Context(), linkID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listEntityLinks(ctx forge.Context, req *ListEntityLinksRequest) ([]*link.Link, error) {
	entityID, err := id.ParseEntityID(ctx.Param("entityId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid entity ID: %v", err))
	}
	dir, err := parseDirection(req.Direction)
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	var links []*link.Link
	if dir == fabric.DirectionForward {
		links, err = a.eng.LinksFrom(ctx.Context(), entityID, req.LinkType)
	} else {
		links, err = a.eng.LinksTo(ctx.Context(), entityID, req.LinkType)
	}
	if err != nil {
		return nil, mapError(err)
	}

	return links, ctx.JSON(http.StatusOK, links)
}

func (a *API) neighbors(ctx forge.Context, req *TraverseRequest) ([]*entity.Entity, error) {
	entityID, dir, err := traverseParams(ctx, req)
	if err != nil {
		return nil, err
	}

	ents, err := a.eng.Neighbors(ctx.Context(), entityID, req.LinkType, dir)
	if err != nil {
		return nil, mapError(err)
	}

	return ents, ctx.JSON(http.StatusOK, ents)
}

func (a *API) reachable(ctx forge.Context, req *TraverseRequest) ([]*entity.Entity, error) {
	entityID, dir, err := traverseParams(ctx, req)
	if err != nil {
		return nil, err
	}

	ents, err := a.eng.Reachable(ctx.Context(), entityID, req.LinkType, dir)
	if err != nil {
		return nil, mapError(err)
	}

	return ents, ctx.JSON(http.StatusOK, ents)
}

func traverseParams(ctx forge.Context, req *TraverseRequest) (id.EntityID, fabric.Direction, error) {
	entityID, err := id.ParseEntityID(ctx.Param("entityId"))
	if err != nil {
		return id.ID{}, "", forge.BadRequest(fmt.Sprintf("invalid entity ID: %v", err))
	}
	if req.LinkType == "" {
		return id.ID{}, "", forge.BadRequest("link_type is required")
	}
	dir, err := parseDirection(req.Direction)
	if err != nil {
		return id.ID{}, "", forge.BadRequest(err.Error())
	}
	return entityID, dir, nil
}
