package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/fabric/schema"
)

func (a *API) registerSchemaRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("schemas"))

	if err := g.POST("/schemas", a.registerSchema,
		forge.WithSummary("Register schema"),
		forge.WithDescription("Creates or replaces the structural definition for a (type, subtype) pair. Requires an elevated context."),
		forge.WithOperationID("registerSchema"),
		forge.WithRequestSchema(RegisterSchemaRequest{}),
		forge.WithCreatedResponse(&schema.Definition{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/schemas", a.listSchemas,
		forge.WithSummary("List schemas"),
		forge.WithDescription("Lists registered schema definitions."),
		forge.WithOperationID("listSchemas"),
		forge.WithRequestSchema(ListSchemasRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Schema list", []*schema.Definition{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) registerSchema(ctx forge.Context, req *RegisterSchemaRequest) (*schema.Definition, error) {
	if req.Type == "" {
		return nil, forge.BadRequest("type is required")
	}

	fields := make([]schema.FieldDef, 0, len(req.Fields))
	for _, f := range req.Fields {
		fields = append(fields, schema.FieldDef{
			Name:     f.Name,
			Kind:     schema.Kind(f.Kind),
			Required: f.Required,
		})
	}

	def, err := a.eng.RegisterSchema(ctx.Context(), &schema.Definition{
		Type:        req.Type,
		Subtype:     req.Subtype,
		Description: req.Description,
		Fields:      fields,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return def, ctx.JSON(http.StatusCreated, def)
}

func (a *API) listSchemas(ctx forge.Context, req *ListSchemasRequest) ([]*schema.Definition, error) {
	filter := &schema.ListFilter{
		Type:   req.Type,
		Search: req.Search,
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}

	defs, err := a.eng.Schemas(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return defs, ctx.JSON(http.StatusOK, defs)
}
