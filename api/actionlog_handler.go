package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/fabric/actionlog"
)

func (a *API) registerActionRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("actions"))

	return g.GET("/actions", a.listActions,
		forge.WithSummary("Query action log"),
		forge.WithDescription("Queries the append-only action log, newest first. Non-elevated callers only see their own tenant's records."),
		forge.WithOperationID("listActions"),
		forge.WithRequestSchema(ListActionsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Action records", []*actionlog.Record{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listActions(ctx forge.Context, req *ListActionsRequest) ([]*actionlog.Record, error) {
	filter := &actionlog.QueryFilter{
		ActorID: req.ActorID,
		Action:  req.Action,
		Outcome: actionlog.Outcome(req.Outcome),
		Limit:   defaultLimit(req.Limit),
		Offset:  req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid after timestamp: %v", err))
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid before timestamp: %v", err))
		}
		filter.Before = &t
	}

	records, err := a.eng.Actions(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return records, ctx.JSON(http.StatusOK, records)
}
