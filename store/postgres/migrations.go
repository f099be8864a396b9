package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the fabric store (PostgreSQL).
var Migrations = migrate.NewGroup("fabric")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_entities",
			Version: "20240601000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS fabric_entities (
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

CREATE INDEX IF NOT EXISTS idx_fabric_entities_tenant_type ON fabric_entities (tenant_id, type);
CREATE INDEX IF NOT EXISTS idx_fabric_entities_tenant_type_subtype ON fabric_entities (tenant_id, type, subtype);
CREATE INDEX IF NOT EXISTS idx_fabric_entities_name ON fabric_entities (name);
CREATE INDEX IF NOT EXISTS idx_fabric_entities_status ON fabric_entities (tenant_id, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS fabric_entities`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_links",
			Version: "20240601000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS fabric_links (
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

CREATE INDEX IF NOT EXISTS idx_fabric_links_source ON fabric_links (source_id, link_type);
CREATE INDEX IF NOT EXISTS idx_fabric_links_target ON fabric_links (target_id, link_type);
CREATE INDEX IF NOT EXISTS idx_fabric_links_tenant ON fabric_links (tenant_id, link_type);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS fabric_links`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_memberships",
			Version: "20240601000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS fabric_memberships (
    id          TEXT PRIMARY KEY,
    actor_id    TEXT NOT NULL,
    tenant_id   TEXT NOT NULL,
    role        TEXT NOT NULL,
    granted_by  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(actor_id, tenant_id)
);

CREATE INDEX IF NOT EXISTS idx_fabric_memberships_actor ON fabric_memberships (actor_id);
CREATE INDEX IF NOT EXISTS idx_fabric_memberships_tenant ON fabric_memberships (tenant_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS fabric_memberships`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_schemas",
			Version: "20240601000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS fabric_schemas (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL,
    subtype     TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    fields      JSONB NOT NULL DEFAULT '[]',
    metadata    JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(type, subtype)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS fabric_schemas`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_actions",
			Version: "20240601000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS fabric_actions (
    id           TEXT PRIMARY KEY,
    actor_id     TEXT NOT NULL,
    tenant_id    TEXT NOT NULL DEFAULT '',
    action       TEXT NOT NULL,
    resource_ref TEXT NOT NULL DEFAULT '',
    outcome      TEXT NOT NULL,
    elevated     BOOLEAN NOT NULL DEFAULT FALSE,
    metadata     JSONB NOT NULL DEFAULT '{}',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fabric_actions_tenant ON fabric_actions (tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_fabric_actions_actor ON fabric_actions (actor_id, created_at);
CREATE INDEX IF NOT EXISTS idx_fabric_actions_outcome ON fabric_actions (tenant_id, outcome);
CREATE INDEX IF NOT EXISTS idx_fabric_actions_created ON fabric_actions (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS fabric_actions`)
				return err
			},
		},
	)
}
