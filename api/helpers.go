package api

import (
	"errors"
	"fmt"

	"github.com/xraph/forge"

	"github.com/xraph/fabric"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fabric.ErrNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, fabric.ErrValidation) || errors.Is(err, fabric.ErrConflict) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, fabric.ErrTraversalDepthExceeded) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, fabric.ErrPermissionDenied) || errors.Is(err, fabric.ErrScopeViolation) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

// parseDirection maps the wire value to a traversal direction. An empty
// value means forward.
func parseDirection(s string) (fabric.Direction, error) {
	switch s {
	case "", string(fabric.DirectionForward):
		return fabric.DirectionForward, nil
	case string(fabric.DirectionBackward):
		return fabric.DirectionBackward, nil
	default:
		return "", fmt.Errorf("invalid direction %q (want forward or backward)", s)
	}
}
