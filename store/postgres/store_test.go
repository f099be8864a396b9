package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// The store assumes two database-level guarantees: the composite unique
// constraint on links and the conditional update used for optimistic
// concurrency on entities. These tests verify both against a real Postgres.

const testDDL = `
CREATE TABLE fabric_entities (
    id                TEXT PRIMARY KEY,
    tenant_id         TEXT NOT NULL,
    type              TEXT NOT NULL,
    subtype           TEXT NOT NULL DEFAULT '',
    name              TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'draft',
    custom_properties JSONB NOT NULL DEFAULT '{}',
    created_by        TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE fabric_links (
    id          TEXT PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    source_id   TEXT NOT NULL REFERENCES fabric_entities(id),
    target_id   TEXT NOT NULL REFERENCES fabric_entities(id),
    link_type   TEXT NOT NULL,
    attrs       JSONB NOT NULL DEFAULT '{}',
    created_by  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(tenant_id, source_id, target_id, link_type)
);
`

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fabric"),
		tcpostgres.WithUsername("fabric"),
		tcpostgres.WithPassword("fabric"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, testDDL); err != nil {
		t.Fatalf("apply ddl: %v", err)
	}
	return pool
}

func TestLinkUniqueConstraint(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	for _, eid := range []string{"ent_src", "ent_dst"} {
		_, err := pool.Exec(ctx,
			`INSERT INTO fabric_entities (id, tenant_id, type, name) VALUES ($1, 't1', 'service', $1)`, eid)
		if err != nil {
			t.Fatalf("insert entity %s: %v", eid, err)
		}
	}

	insert := `INSERT INTO fabric_links (id, tenant_id, source_id, target_id, link_type)
		VALUES ($1, 't1', 'ent_src', 'ent_dst', 'depends_on')
		ON CONFLICT (tenant_id, source_id, target_id, link_type) DO NOTHING`

	tag, err := pool.Exec(ctx, insert, "lnk_1")
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("first insert affected %d rows, want 1", tag.RowsAffected())
	}

	// Same edge again: the conflict clause must swallow it so the store can
	// report a conflict from the zero row count.
	tag, err = pool.Exec(ctx, insert, "lnk_2")
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if tag.RowsAffected() != 0 {
		t.Fatalf("duplicate insert affected %d rows, want 0", tag.RowsAffected())
	}

	// A different link type between the same endpoints is a distinct edge.
	tag, err = pool.Exec(ctx,
		`INSERT INTO fabric_links (id, tenant_id, source_id, target_id, link_type)
		VALUES ('lnk_3', 't1', 'ent_src', 'ent_dst', 'routes_to')
		ON CONFLICT (tenant_id, source_id, target_id, link_type) DO NOTHING`)
	if err != nil {
		t.Fatalf("distinct type insert: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("distinct type insert affected %d rows, want 1", tag.RowsAffected())
	}
}

func TestEntityStaleUpdate(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err := pool.Exec(ctx,
		`INSERT INTO fabric_entities (id, tenant_id, type, name, updated_at) VALUES ('ent_1', 't1', 'service', 'svc', $1)`, base)
	if err != nil {
		t.Fatalf("insert entity: %v", err)
	}

	update := `UPDATE fabric_entities SET name = $1, updated_at = $2 WHERE id = 'ent_1' AND updated_at = $3`

	// Writer A read the row at base and wins.
	tag, err := pool.Exec(ctx, update, "svc-a", base.Add(time.Second), base)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("first update affected %d rows, want 1", tag.RowsAffected())
	}

	// Writer B also read the row at base; its condition no longer holds.
	tag, err = pool.Exec(ctx, update, "svc-b", base.Add(2*time.Second), base)
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if tag.RowsAffected() != 0 {
		t.Fatalf("stale update affected %d rows, want 0", tag.RowsAffected())
	}

	var name string
	if err := pool.QueryRow(ctx, `SELECT name FROM fabric_entities WHERE id = 'ent_1'`).Scan(&name); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if name != "svc-a" {
		t.Fatalf("name = %q, want %q (first writer wins)", name, "svc-a")
	}
}
