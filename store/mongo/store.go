// Package mongo provides a MongoDB implementation of the fabric composite
// store backed by grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
	"github.com/xraph/fabric/schema"
	"github.com/xraph/fabric/store"
)

// Collection name constants.
const (
	colEntities    = "fabric_entities"
	colLinks       = "fabric_links"
	colMemberships = "fabric_memberships"
	colSchemas     = "fabric_schemas"
	colActions     = "fabric_actions"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite fabric store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all fabric collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("fabric/mongo: migrate %s indexes: %w", col, err)
		}
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all fabric collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colEntities: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "type", Value: 1}, {Key: "subtype", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		colLinks: {
			{
				Keys: bson.D{
					{Key: "tenant_id", Value: 1},
					{Key: "source_id", Value: 1},
					{Key: "target_id", Value: 1},
					{Key: "link_type", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "source_id", Value: 1}, {Key: "link_type", Value: 1}}},
			{Keys: bson.D{{Key: "target_id", Value: 1}, {Key: "link_type", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "link_type", Value: 1}}},
		},
		colMemberships: {
			{
				Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "tenant_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "actor_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
		},
		colSchemas: {
			{
				Keys:    bson.D{{Key: "type", Value: 1}, {Key: "subtype", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colActions: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "outcome", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Entity operations
// ──────────────────────────────────────────────────

func (s *Store) CreateEntity(ctx context.Context, e *entity.Entity) error {
	if _, err := s.mdb.NewInsert(entityToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("fabric: create entity: %w", err)
	}
	return nil
}

func (s *Store) GetEntity(ctx context.Context, entityID id.EntityID) (*entity.Entity, error) {
	var m entityModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entityID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("entity %s: %w", entityID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get entity: %w", err)
	}
	return entityFromModel(&m), nil
}

// UpdateEntity matches on both _id and the updated_at the caller read, so a
// concurrent writer that already bumped the timestamp makes this a no-match.
func (s *Store) UpdateEntity(ctx context.Context, e *entity.Entity) error {
	prev := e.UpdatedAt
	e.UpdatedAt = time.Now().UTC()
	m := entityToModel(e)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "updated_at": prev}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: update entity: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("entity %s: stale update: %w", e.ID, store.ErrConflict)
	}
	return nil
}

func (s *Store) ListEntities(ctx context.Context, filter *entity.ListFilter) ([]*entity.Entity, error) {
	var models []entityModel
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.Type != "" {
			f["type"] = filter.Type
		}
		if filter.Subtype != "" {
			f["subtype"] = filter.Subtype
		}
		if filter.Status != "" {
			f["status"] = string(filter.Status)
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "_id", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list entities: %w", err)
	}
	result := make([]*entity.Entity, len(models))
	for i := range models {
		result[i] = entityFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountEntities(ctx context.Context, filter *entity.ListFilter) (int64, error) {
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.Type != "" {
			f["type"] = filter.Type
		}
		if filter.Subtype != "" {
			f["subtype"] = filter.Subtype
		}
		if filter.Status != "" {
			f["status"] = string(filter.Status)
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	count, err := s.mdb.NewFind((*entityModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count entities: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Link operations
// ──────────────────────────────────────────────────

func (s *Store) CreateLink(ctx context.Context, l *link.Link) error {
	if _, err := s.mdb.NewInsert(linkToModel(l)).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("link %s -%s-> %s: %w", l.SourceID, l.LinkType, l.TargetID, store.ErrConflict)
		}
		return fmt.Errorf("fabric: create link: %w", err)
	}
	return nil
}

func (s *Store) GetLink(ctx context.Context, linkID id.LinkID) (*link.Link, error) {
	var m linkModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": linkID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get link: %w", err)
	}
	return linkFromModel(&m), nil
}

func (s *Store) FindLink(ctx context.Context, tenantID string, sourceID, targetID id.EntityID, linkType string) (*link.Link, error) {
	var m linkModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"tenant_id": tenantID,
			"source_id": sourceID.String(),
			"target_id": targetID.String(),
			"link_type": linkType,
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("link %s -%s-> %s: %w", sourceID, linkType, targetID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: find link: %w", err)
	}
	return linkFromModel(&m), nil
}

func (s *Store) UpdateLinkAttrs(ctx context.Context, linkID id.LinkID, attrs map[string]any) error {
	res, err := s.mdb.NewUpdate((*linkModel)(nil)).
		Filter(bson.M{"_id": linkID.String()}).
		Set("attrs", attrs).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: update link attrs: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, linkID id.LinkID) error {
	res, err := s.mdb.NewDelete((*linkModel)(nil)).
		Filter(bson.M{"_id": linkID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete link: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListLinksFrom(ctx context.Context, sourceID id.EntityID, linkType string) ([]*link.Link, error) {
	f := bson.M{"source_id": sourceID.String()}
	if linkType != "" {
		f["link_type"] = linkType
	}
	return s.findLinks(ctx, f)
}

func (s *Store) ListLinksTo(ctx context.Context, targetID id.EntityID, linkType string) ([]*link.Link, error) {
	f := bson.M{"target_id": targetID.String()}
	if linkType != "" {
		f["link_type"] = linkType
	}
	return s.findLinks(ctx, f)
}

func (s *Store) findLinks(ctx context.Context, f bson.M) ([]*link.Link, error) {
	var models []linkModel
	err := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("fabric: find links: %w", err)
	}
	result := make([]*link.Link, len(models))
	for i := range models {
		result[i] = linkFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListLinks(ctx context.Context, filter *link.ListFilter) ([]*link.Link, error) {
	var models []linkModel
	f := linkFilterDoc(filter)
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "_id", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list links: %w", err)
	}
	result := make([]*link.Link, len(models))
	for i := range models {
		result[i] = linkFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountLinks(ctx context.Context, filter *link.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*linkModel)(nil)).
		Filter(linkFilterDoc(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count links: %w", err)
	}
	return count, nil
}

func linkFilterDoc(filter *link.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if !filter.SourceID.IsNil() {
		f["source_id"] = filter.SourceID.String()
	}
	if !filter.TargetID.IsNil() {
		f["target_id"] = filter.TargetID.String()
	}
	if filter.LinkType != "" {
		f["link_type"] = filter.LinkType
	}
	return f
}

func (s *Store) CountLinksForEntity(ctx context.Context, entityID id.EntityID) (int64, error) {
	count, err := s.mdb.NewFind((*linkModel)(nil)).
		Filter(bson.M{
			"$or": []bson.M{
				{"source_id": entityID.String()},
				{"target_id": entityID.String()},
			},
			"link_type": bson.M{"$ne": link.AvailabilityType},
		}).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count links for entity: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteLinksForEntity(ctx context.Context, entityID id.EntityID, linkType string) (int64, error) {
	f := bson.M{
		"$or": []bson.M{
			{"source_id": entityID.String()},
			{"target_id": entityID.String()},
		},
	}
	if linkType != "" {
		f["link_type"] = linkType
	} else {
		f["link_type"] = bson.M{"$ne": link.AvailabilityType}
	}
	res, err := s.mdb.NewDelete((*linkModel)(nil)).
		Many().
		Filter(f).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: delete links for entity: %w", err)
	}
	return res.DeletedCount(), nil
}

// ──────────────────────────────────────────────────
// Membership operations
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(ctx context.Context, m *membership.Membership) error {
	if _, err := s.mdb.NewInsert(membershipToModel(m)).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("membership %s/%s: %w", m.ActorID, m.TenantID, store.ErrConflict)
		}
		return fmt.Errorf("fabric: create membership: %w", err)
	}
	return nil
}

func (s *Store) GetMembership(ctx context.Context, actorID, tenantID string) (*membership.Membership, error) {
	var m membershipModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"actor_id": actorID, "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("membership %s/%s: %w", actorID, tenantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get membership: %w", err)
	}
	return membershipFromModel(&m), nil
}

func (s *Store) UpdateMembership(ctx context.Context, m *membership.Membership) error {
	model := membershipToModel(m)
	res, err := s.mdb.NewUpdate(model).
		Filter(bson.M{"_id": model.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: update membership: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("membership %s: %w", m.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteMembership(ctx context.Context, membershipID id.MembershipID) error {
	res, err := s.mdb.NewDelete((*membershipModel)(nil)).
		Filter(bson.M{"_id": membershipID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete membership: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListMembershipsForActor(ctx context.Context, actorID string) ([]*membership.Membership, error) {
	var models []membershipModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"actor_id": actorID}).
		Sort(bson.D{{Key: "tenant_id", Value: 1}}).
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
	f := membershipFilterDoc(filter)
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "_id", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*membershipModel)(nil)).
		Filter(membershipFilterDoc(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count memberships: %w", err)
	}
	return count, nil
}

func membershipFilterDoc(filter *membership.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.ActorID != "" {
		f["actor_id"] = filter.ActorID
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.Role != "" {
		f["role"] = filter.Role
	}
	return f
}

func (s *Store) DeleteMembershipsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*membershipModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete memberships by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Schema operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDefinition(ctx context.Context, d *schema.Definition) error {
	if _, err := s.mdb.NewInsert(schemaToModel(d)).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("schema %s/%s: %w", d.Type, d.Subtype, store.ErrConflict)
		}
		return fmt.Errorf("fabric: create schema: %w", err)
	}
	return nil
}

func (s *Store) GetDefinition(ctx context.Context, entityType, subtype string) (*schema.Definition, error) {
	var m schemaModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"type": entityType, "subtype": subtype}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("schema %s/%s: %w", entityType, subtype, store.ErrNotFound)
		}
		return nil, fmt.Errorf("fabric: get schema: %w", err)
	}
	return schemaFromModel(&m), nil
}

func (s *Store) UpdateDefinition(ctx context.Context, d *schema.Definition) error {
	m := schemaToModel(d)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: update schema: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("schema %s: %w", d.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteDefinition(ctx context.Context, schemaID id.SchemaID) error {
	res, err := s.mdb.NewDelete((*schemaModel)(nil)).
		Filter(bson.M{"_id": schemaID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fabric: delete schema: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("schema %s: %w", schemaID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListDefinitions(ctx context.Context, filter *schema.ListFilter) ([]*schema.Definition, error) {
	var models []schemaModel
	f := bson.M{}
	if filter != nil {
		if filter.Type != "" {
			f["type"] = filter.Type
		}
		if filter.Search != "" {
			f["$or"] = []bson.M{
				{"type": bson.M{"$regex": filter.Search, "$options": "i"}},
				{"subtype": bson.M{"$regex": filter.Search, "$options": "i"}},
			}
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "type", Value: 1}, {Key: "subtype", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list schemas: %w", err)
	}
	result := make([]*schema.Definition, len(models))
	for i := range models {
		result[i] = schemaFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Action log operations
// ──────────────────────────────────────────────────

func (s *Store) AppendAction(ctx context.Context, r *actionlog.Record) error {
	if _, err := s.mdb.NewInsert(actionToModel(r)).Exec(ctx); err != nil {
		return fmt.Errorf("fabric: append action: %w", err)
	}
	return nil
}

func (s *Store) ListActions(ctx context.Context, filter *actionlog.QueryFilter) ([]*actionlog.Record, error) {
	var models []actionModel
	f := actionFilterDoc(filter)
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("fabric: list actions: %w", err)
	}
	result := make([]*actionlog.Record, len(models))
	for i := range models {
		result[i] = actionFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountActions(ctx context.Context, filter *actionlog.QueryFilter) (int64, error) {
	count, err := s.mdb.NewFind((*actionModel)(nil)).
		Filter(actionFilterDoc(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: count actions: %w", err)
	}
	return count, nil
}

func actionFilterDoc(filter *actionlog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.ActorID != "" {
		f["actor_id"] = filter.ActorID
	}
	if filter.Action != "" {
		f["action"] = filter.Action
	}
	if filter.Outcome != "" {
		f["outcome"] = string(filter.Outcome)
	}
	created := bson.M{}
	if filter.After != nil {
		created["$gt"] = *filter.After
	}
	if filter.Before != nil {
		created["$lt"] = *filter.Before
	}
	if len(created) > 0 {
		f["created_at"] = created
	}
	return f
}

func (s *Store) PurgeActions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*actionModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("fabric: purge actions: %w", err)
	}
	return res.DeletedCount(), nil
}
