package actionlog

import (
	"context"
	"time"
)

// Store defines persistence operations for the action log.
type Store interface {
	// AppendAction persists a new record. There is no update or single
	// delete: the log is append-only.
	AppendAction(ctx context.Context, r *Record) error

	// ListActions returns records matching the filter, newest first.
	ListActions(ctx context.Context, filter *QueryFilter) ([]*Record, error)

	// CountActions returns the number of records matching the filter.
	CountActions(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeActions removes records older than the given time. Retention
	// enforcement only; never called by the engine itself.
	PurgeActions(ctx context.Context, before time.Time) (int64, error)
}
