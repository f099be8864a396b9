package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/fabric"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
)

func (a *API) registerEntityRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("entities"))

	if err := g.POST("/entities", a.createEntity,
		forge.WithSummary("Create entity"),
		forge.WithDescription("Creates a draft entity in the caller's tenant. The attribute payload is validated against the registered schema for the (type, subtype) pair."),
		forge.WithOperationID("createEntity"),
		forge.WithRequestSchema(CreateEntityRequest{}),
		forge.WithCreatedResponse(&entity.Entity{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/entities/:entityId", a.getEntity,
		forge.WithSummary("Get entity"),
		forge.WithDescription("Returns an entity visible under the caller's scope."),
		forge.WithOperationID("getEntity"),
		forge.WithResponseSchema(http.StatusOK, "Entity details", &entity.Entity{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/entities/:entityId", a.updateEntity,
		forge.WithSummary("Update entity"),
		forge.WithDescription("Updates mutable fields of an entity. Type, subtype, and tenant are immutable."),
		forge.WithOperationID("updateEntity"),
		forge.WithRequestSchema(UpdateEntityRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated entity", &entity.Entity{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/entities/:entityId/archive", a.archiveEntity,
		forge.WithSummary("Archive entity"),
		forge.WithDescription("Archives an entity, applying the configured per-link-type archive policies."),
		forge.WithOperationID("archiveEntity"),
		forge.WithResponseSchema(http.StatusOK, "Archived entity", &entity.Entity{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/entities", a.listEntities,
		forge.WithSummary("List entities"),
		forge.WithDescription("Lists entities visible under the caller's scope, including enabled system-owned shares."),
		forge.WithOperationID("listEntities"),
		forge.WithRequestSchema(ListEntitiesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Entity list", []*entity.Entity{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createEntity(ctx forge.Context, req *CreateEntityRequest) (*entity.Entity, error) {
	if req.Type == "" {
		return nil, forge.BadRequest("type is required")
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	ent, err := a.eng.CreateEntity(ctx.Context(), &fabric.CreateEntityRequest{
		Type:             req.Type,
		Subtype:          req.Subtype,
		Name:             req.Name,
		Description:      req.Description,
		CustomProperties: req.CustomProperties,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return ent, ctx.JSON(http.StatusCreated, ent)
}

func (a *API) getEntity(ctx forge.Context, _ *GetEntityRequest) (*entity.Entity, error) {
	entityID, err := id.ParseEntityID(ctx.Param("entityId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid entity ID: %v", err))
	}

	ent, err := a.eng.GetEntity(ctx.Context(), entityID)
	if err != nil {
		return nil, mapError(err)
	}

	return ent, ctx.JSON(http.StatusOK, ent)
}

func (a *API) updateEntity(ctx forge.Context, req *UpdateEntityRequest) (*entity.Entity, error) {
	entityID, err := id.ParseEntityID(ctx.Param("entityId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid entity ID: %v", err))
	}

	ent, err := a.eng.UpdateEntity(ctx.Context(), entityID, &fabric.EntityPatch{
		Name:             req.Name,
		Description:      req.Description,
		Status:           req.Status,
		CustomProperties: req.CustomProperties,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return ent, ctx.JSON(http.StatusOK, ent)
}

func (a *API) archiveEntity(ctx forge.Context, _ *GetEntityRequest) (*entity.Entity, error) {
	entityID, err := id.ParseEntityID(ctx.Param("entityId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid entity ID: %v", err))
	}

	ent, err := a.eng.ArchiveEntity(ctx.Context(), entityID)
	if err != nil {
		return nil, mapError(err)
	}

	return ent, ctx.JSON(http.StatusOK, ent)
}

func (a *API) listEntities(ctx forge.Context, req *ListEntitiesRequest) ([]*entity.Entity, error) {
	filter := &entity.ListFilter{
		Type:    req.Type,
		Subtype: req.Subtype,
		Status:  entity.Status(req.Status),
		Search:  req.Search,
		Limit:   defaultLimit(req.Limit),
		Offset:  req.Offset,
	}

	ents, err := a.eng.ListEntities(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return ents, ctx.JSON(http.StatusOK, ents)
}
