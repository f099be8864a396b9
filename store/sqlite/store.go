// Package sqlite provides a SQLite implementation of the fabric composite
// store, built on grove.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
	"github.com/xraph/fabric/schema"
	"github.com/xraph/fabric/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a SQLite implementation of the composite fabric store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("fabric/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("fabric/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ──────────────────────────────────────────────────
// Entity operations
// ──────────────────────────────────────────────────

func (s *Store) CreateEntity(ctx context.Context, e *entity.Entity) error {
	m, err := entityToModel(e)
	if err != nil {
		return fmt.Errorf("fabric: create entity: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("fabric: create entity: %w", err)
	}
	return nil
}

func (s *Store) GetEntity(ctx context.Context, entityID id.EntityID) (*entity.Entity, error) {
	m := new(entityModel)
	err := s.sdb.NewSelect(m).Where("id = ?", entityID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("entity %s: %w", entityID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get entity: %w", err)
	}
	return entityFromModel(m)
}

// UpdateEntity writes the entity only if the stored updated_at still matches
// the one the caller read. Zero rows affected means another writer won.
func (s *Store) UpdateEntity(ctx context.Context, e *entity.Entity) error {
	prev := e.UpdatedAt
	e.UpdatedAt = time.Now().UTC()
	m, err := entityToModel(e)
	if err != nil {
		return fmt.Errorf("fabric: update entity: %w", err)
	}
	res, err := s.sdb.NewUpdate(m).
		Where("id = ?", m.ID).
		Where("updated_at = ?", prev).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: update entity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fabric: update entity: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entity %s: stale update: %w", e.ID, store.ErrConflict)
	}
	return nil
}

func (s *Store) ListEntities(ctx context.Context, filter *entity.ListFilter) ([]*entity.Entity, error) {
	var models []entityModel
	q := s.sdb.NewSelect(&models).OrderExpr("id ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.Subtype != "" {
			q = q.Where("subtype = ?", filter.Subtype)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list entities: %w", err)
	}
	result := make([]*entity.Entity, len(models))
	for i := range models {
		e, err := entityFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("fabric: list entities: %w", err)
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) CountEntities(ctx context.Context, filter *entity.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*entityModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.Subtype != "" {
			q = q.Where("subtype = ?", filter.Subtype)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count entities: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Link operations
// ──────────────────────────────────────────────────

func (s *Store) CreateLink(ctx context.Context, l *link.Link) error {
	m, err := linkToModel(l)
	if err != nil {
		return fmt.Errorf("fabric: create link: %w", err)
	}
	res, err := s.sdb.NewInsert(m).
		OnConflict("(tenant_id, source_id, target_id, link_type) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: create link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fabric: create link: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("link %s -%s-> %s: %w", l.SourceID, l.LinkType, l.TargetID, store.ErrConflict)
	}
	return nil
}

func (s *Store) GetLink(ctx context.Context, linkID id.LinkID) (*link.Link, error) {
	m := new(linkModel)
	err := s.sdb.NewSelect(m).Where("id = ?", linkID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get link: %w", err)
	}
	return linkFromModel(m)
}

func (s *Store) FindLink(ctx context.Context, tenantID string, sourceID, targetID id.EntityID, linkType string) (*link.Link, error) {
	m := new(linkModel)
	err := s.sdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("source_id = ?", sourceID.String()).
		Where("target_id = ?", targetID.String()).
		Where("link_type = ?", linkType).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("link %s -%s-> %s: %w", sourceID, linkType, targetID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: find link: %w", err)
	}
	return linkFromModel(m)
}

func (s *Store) UpdateLinkAttrs(ctx context.Context, linkID id.LinkID, attrs map[string]any) error {
	l, err := s.GetLink(ctx, linkID)
	if err != nil {
		return err
	}
	l.Attrs = attrs
	m, err := linkToModel(l)
	if err != nil {
		return fmt.Errorf("fabric: update link attrs: %w", err)
	}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("fabric: update link attrs: %w", err)
	}
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, linkID id.LinkID) error {
	res, err := s.sdb.NewDelete((*linkModel)(nil)).
		Where("id = ?", linkID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fabric: delete link: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListLinksFrom(ctx context.Context, sourceID id.EntityID, linkType string) ([]*link.Link, error) {
	var models []linkModel
	q := s.sdb.NewSelect(&models).
		Where("source_id = ?", sourceID.String()).
		OrderExpr("id ASC")
	if linkType != "" {
		q = q.Where("link_type = ?", linkType)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list links from: %w", err)
	}
	return linksFromModels(models)
}

func (s *Store) ListLinksTo(ctx context.Context, targetID id.EntityID, linkType string) ([]*link.Link, error) {
	var models []linkModel
	q := s.sdb.NewSelect(&models).
		Where("target_id = ?", targetID.String()).
		OrderExpr("id ASC")
	if linkType != "" {
		q = q.Where("link_type = ?", linkType)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list links to: %w", err)
	}
	return linksFromModels(models)
}

func (s *Store) ListLinks(ctx context.Context, filter *link.ListFilter) ([]*link.Link, error) {
	var models []linkModel
	q := s.sdb.NewSelect(&models).OrderExpr("id ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if !filter.SourceID.IsNil() {
			q = q.Where("source_id = ?", filter.SourceID.String())
		}
		if !filter.TargetID.IsNil() {
			q = q.Where("target_id = ?", filter.TargetID.String())
		}
		if filter.LinkType != "" {
			q = q.Where("link_type = ?", filter.LinkType)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list links: %w", err)
	}
	return linksFromModels(models)
}

func (s *Store) CountLinks(ctx context.Context, filter *link.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*linkModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if !filter.SourceID.IsNil() {
			q = q.Where("source_id = ?", filter.SourceID.String())
		}
		if !filter.TargetID.IsNil() {
			q = q.Where("target_id = ?", filter.TargetID.String())
		}
		if filter.LinkType != "" {
			q = q.Where("link_type = ?", filter.LinkType)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count links: %w", err)
	}
	return count, nil
}

func (s *Store) CountLinksForEntity(ctx context.Context, entityID id.EntityID) (int64, error) {
	count, err := s.sdb.NewSelect((*linkModel)(nil)).
		Where("(source_id = ? OR target_id = ?)", entityID.String(), entityID.String()).
		Where("link_type != ?", link.AvailabilityType).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count links for entity: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteLinksForEntity(ctx context.Context, entityID id.EntityID, linkType string) (int64, error) {
	q := s.sdb.NewDelete((*linkModel)(nil)).
		Where("(source_id = ? OR target_id = ?)", entityID.String(), entityID.String()).
		Where("link_type != ?", link.AvailabilityType)
	if linkType != "" {
		q = q.Where("link_type = ?", linkType)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: delete links for entity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fabric: delete links for entity: %w", err)
	}
	return n, nil
}

func linksFromModels(models []linkModel) ([]*link.Link, error) {
	result := make([]*link.Link, len(models))
	for i := range models {
		l, err := linkFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("fabric: decode link: %w", err)
		}
		result[i] = l
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Membership operations
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(ctx context.Context, m *membership.Membership) error {
	model := membershipToModel(m)
	res, err := s.sdb.NewInsert(model).
		OnConflict("(actor_id, tenant_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: create membership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fabric: create membership: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("membership %s/%s: %w", m.ActorID, m.TenantID, store.ErrConflict)
	}
	return nil
}

func (s *Store) GetMembership(ctx context.Context, actorID, tenantID string) (*membership.Membership, error) {
	m := new(membershipModel)
	err := s.sdb.NewSelect(m).
		Where("actor_id = ?", actorID).
		Where("tenant_id = ?", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("membership %s/%s: %w", actorID, tenantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get membership: %w", err)
	}
	return membershipFromModel(m), nil
}

func (s *Store) UpdateMembership(ctx context.Context, m *membership.Membership) error {
	if _, err := s.sdb.NewUpdate(membershipToModel(m)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("fabric: update membership: %w", err)
	}
	return nil
}

func (s *Store) DeleteMembership(ctx context.Context, membershipID id.MembershipID) error {
	res, err := s.sdb.NewDelete((*membershipModel)(nil)).
		Where("id = ?", membershipID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete membership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fabric: delete membership: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListMembershipsForActor(ctx context.Context, actorID string) ([]*membership.Membership, error) {
	var models []membershipModel
	err := s.sdb.NewSelect(&models).
		Where("actor_id = ?", actorID).
		OrderExpr("tenant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("fabric: list memberships for actor: %w", err)
	}
	result := make([]*membership.Membership, len(models))
	for i := range models {
		result[i] = membershipFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListMemberships(ctx context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	var models []membershipModel
	q := s.sdb.NewSelect(&models).OrderExpr("id ASC")
	if filter != nil {
		if filter.ActorID != "" {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list memberships: %w", err)
	}
	result := make([]*membership.Membership, len(models))
	for i := range models {
		result[i] = membershipFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountMemberships(ctx context.Context, filter *membership.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*membershipModel)(nil))
	if filter != nil {
		if filter.ActorID != "" {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count memberships: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteMembershipsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.sdb.NewDelete((*membershipModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete memberships by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Schema operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDefinition(ctx context.Context, d *schema.Definition) error {
	m, err := schemaToModel(d)
	if err != nil {
		return fmt.Errorf("fabric: create schema: %w", err)
	}
	res, err := s.sdb.NewInsert(m).
		OnConflict("(type, subtype) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: create schema: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fabric: create schema: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("schema %s/%s: %w", d.Type, d.Subtype, store.ErrConflict)
	}
	return nil
}

func (s *Store) GetDefinition(ctx context.Context, entityType, subtype string) (*schema.Definition, error) {
	m := new(schemaModel)
	err := s.sdb.NewSelect(m).
		Where("type = ?", entityType).
		Where("subtype = ?", subtype).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("schema %s/%s: %w", entityType, subtype, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get schema: %w", err)
	}
	return schemaFromModel(m)
}

func (s *Store) UpdateDefinition(ctx context.Context, d *schema.Definition) error {
	m, err := schemaToModel(d)
	if err != nil {
		return fmt.Errorf("fabric: update schema: %w", err)
	}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("fabric: update schema: %w", err)
	}
	return nil
}

func (s *Store) DeleteDefinition(ctx context.Context, schemaID id.SchemaID) error {
	res, err := s.sdb.NewDelete((*schemaModel)(nil)).
		Where("id = ?", schemaID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete schema: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fabric: delete schema: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("schema %s: %w", schemaID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListDefinitions(ctx context.Context, filter *schema.ListFilter) ([]*schema.Definition, error) {
	var models []schemaModel
	q := s.sdb.NewSelect(&models).OrderExpr("type ASC, subtype ASC")
	if filter != nil {
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(type || '/' || subtype) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list schemas: %w", err)
	}
	result := make([]*schema.Definition, len(models))
	for i := range models {
		d, err := schemaFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("fabric: list schemas: %w", err)
		}
		result[i] = d
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Action log operations
// ──────────────────────────────────────────────────

func (s *Store) AppendAction(ctx context.Context, r *actionlog.Record) error {
	m, err := actionToModel(r)
	if err != nil {
		return fmt.Errorf("fabric: append action: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("fabric: append action: %w", err)
	}
	return nil
}

func (s *Store) ListActions(ctx context.Context, filter *actionlog.QueryFilter) ([]*actionlog.Record, error) {
	var models []actionModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at DESC, id DESC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.ActorID != "" {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Outcome != "" {
			q = q.Where("outcome = ?", string(filter.Outcome))
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list actions: %w", err)
	}
	result := make([]*actionlog.Record, len(models))
	for i := range models {
		r, err := actionFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("fabric: list actions: %w", err)
		}
		result[i] = r
	}
	return result, nil
}

func (s *Store) CountActions(ctx context.Context, filter *actionlog.QueryFilter) (int64, error) {
	q := s.sdb.NewSelect((*actionModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.ActorID != "" {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Outcome != "" {
			q = q.Where("outcome = ?", string(filter.Outcome))
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count actions: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeActions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.sdb.NewDelete((*actionModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: purge actions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fabric: purge actions: %w", err)
	}
	return n, nil
}
