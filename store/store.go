// Package store defines the aggregate persistence interface. Each subsystem
// (entity, link, membership, schema, actionlog) defines its own store
// interface. The composite Store composes them all.
// Backends: Postgres, SQLite, Mongo, and Memory.
package store

import (
	"context"
	"errors"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
	"github.com/xraph/fabric/schema"
)

// Sentinel errors shared by every backend. The engine translates these into
// its caller-facing error kinds; backends wrap them with record context.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned on unique-constraint violations and on
	// optimistic-concurrency write contention.
	ErrConflict = errors.New("store: conflict")
)

// Store is the aggregate persistence interface.
// Each subsystem store is a composable interface; a single backend
// (postgres, sqlite, mongo, memory) implements all of them.
type Store interface {
	entity.Store
	link.Store
	membership.Store
	schema.Store
	actionlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
