// Package memory provides an in-memory implementation of the fabric
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
	"github.com/xraph/fabric/schema"
	"github.com/xraph/fabric/store"
)

// Compile-time interface checks.
var (
	_ entity.Store     = (*Store)(nil)
	_ link.Store       = (*Store)(nil)
	_ membership.Store = (*Store)(nil)
	_ schema.Store     = (*Store)(nil)
	_ actionlog.Store  = (*Store)(nil)
	_ store.Store      = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all fabric records.
type Store struct {
	mu sync.RWMutex

	entities    map[string]*entity.Entity
	links       map[string]*link.Link
	memberships map[string]*membership.Membership
	schemas     map[string]*schema.Definition
	actions     map[string]*actionlog.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entities:    make(map[string]*entity.Entity),
		links:       make(map[string]*link.Link),
		memberships: make(map[string]*membership.Membership),
		schemas:     make(map[string]*schema.Definition),
		actions:     make(map[string]*actionlog.Record),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Entity Store
// ──────────────────────────────────────────────────

func (s *Store) CreateEntity(_ context.Context, e *entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID.String()] = copyEntity(e)
	return nil
}

func (s *Store) GetEntity(_ context.Context, entityID id.EntityID) (*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityID.String()]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", entityID, store.ErrNotFound)
	}
	return copyEntity(e), nil
}

func (s *Store) UpdateEntity(_ context.Context, e *entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entities[e.ID.String()]
	if !ok {
		return fmt.Errorf("entity %s: %w", e.ID, store.ErrNotFound)
	}
	if !cur.UpdatedAt.Equal(e.UpdatedAt) {
		return fmt.Errorf("entity %s: stale update: %w", e.ID, store.ErrConflict)
	}
	e.UpdatedAt = time.Now().UTC()
	s.entities[e.ID.String()] = copyEntity(e)
	return nil
}

func (s *Store) ListEntities(_ context.Context, filter *entity.ListFilter) ([]*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.Entity
	for _, e := range s.entities {
		if entityMatches(e, filter) {
			out = append(out, copyEntity(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	if filter != nil {
		out = window(out, filter.Limit, filter.Offset)
	}
	return out, nil
}

func (s *Store) CountEntities(_ context.Context, filter *entity.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entities {
		if entityMatches(e, filter) {
			n++
		}
	}
	return n, nil
}

func entityMatches(e *entity.Entity, f *entity.ListFilter) bool {
	if f == nil {
		return true
	}
	if f.TenantID != "" && e.TenantID != f.TenantID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Subtype != "" && e.Subtype != f.Subtype {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Link Store
// ──────────────────────────────────────────────────

func (s *Store) CreateLink(_ context.Context, l *link.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.links {
		if sameEdge(cur, l.TenantID, l.SourceID, l.TargetID, l.LinkType) {
			return fmt.Errorf("link %s -%s-> %s: %w", l.SourceID, l.LinkType, l.TargetID, store.ErrConflict)
		}
	}
	s.links[l.ID.String()] = copyLink(l)
	return nil
}

func (s *Store) GetLink(_ context.Context, linkID id.LinkID) (*link.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[linkID.String()]
	if !ok {
		return nil, fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
	}
	return copyLink(l), nil
}

func (s *Store) FindLink(_ context.Context, tenantID string, sourceID, targetID id.EntityID, linkType string) (*link.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if sameEdge(l, tenantID, sourceID, targetID, linkType) {
			return copyLink(l), nil
		}
	}
	return nil, fmt.Errorf("link %s -%s-> %s: %w", sourceID, linkType, targetID, store.ErrNotFound)
}

func (s *Store) UpdateLinkAttrs(_ context.Context, linkID id.LinkID, attrs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[linkID.String()]
	if !ok {
		return fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
	}
	c := copyLink(l)
	c.Attrs = copyAttrs(attrs)
	s.links[linkID.String()] = c
	return nil
}

func (s *Store) DeleteLink(_ context.Context, linkID id.LinkID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[linkID.String()]; !ok {
		return fmt.Errorf("link %s: %w", linkID, store.ErrNotFound)
	}
	delete(s.links, linkID.String())
	return nil
}

func (s *Store) ListLinksFrom(_ context.Context, sourceID id.EntityID, linkType string) ([]*link.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*link.Link
	for _, l := range s.links {
		if l.SourceID.String() == sourceID.String() && (linkType == "" || l.LinkType == linkType) {
			out = append(out, copyLink(l))
		}
	}
	sortLinks(out)
	return out, nil
}

func (s *Store) ListLinksTo(_ context.Context, targetID id.EntityID, linkType string) ([]*link.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*link.Link
	for _, l := range s.links {
		if l.TargetID.String() == targetID.String() && (linkType == "" || l.LinkType == linkType) {
			out = append(out, copyLink(l))
		}
	}
	sortLinks(out)
	return out, nil
}

func (s *Store) ListLinks(_ context.Context, filter *link.ListFilter) ([]*link.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*link.Link
	for _, l := range s.links {
		if linkMatches(l, filter) {
			out = append(out, copyLink(l))
		}
	}
	sortLinks(out)
	if filter != nil {
		out = window(out, filter.Limit, filter.Offset)
	}
	return out, nil
}

func (s *Store) CountLinks(_ context.Context, filter *link.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, l := range s.links {
		if linkMatches(l, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountLinksForEntity(_ context.Context, entityID id.EntityID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, l := range s.links {
		if l.LinkType == link.AvailabilityType {
			continue
		}
		if l.SourceID.String() == entityID.String() || l.TargetID.String() == entityID.String() {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteLinksForEntity(_ context.Context, entityID id.EntityID, linkType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, l := range s.links {
		if l.LinkType == link.AvailabilityType {
			continue
		}
		if linkType != "" && l.LinkType != linkType {
			continue
		}
		if l.SourceID.String() == entityID.String() || l.TargetID.String() == entityID.String() {
			delete(s.links, k)
			n++
		}
	}
	return n, nil
}

func sameEdge(l *link.Link, tenantID string, sourceID, targetID id.EntityID, linkType string) bool {
	return l.TenantID == tenantID && l.SourceID.String() == sourceID.String() && l.TargetID.String() == targetID.String() && l.LinkType == linkType
}

func linkMatches(l *link.Link, f *link.ListFilter) bool {
	if f == nil {
		return true
	}
	if f.TenantID != "" && l.TenantID != f.TenantID {
		return false
	}
	if !f.SourceID.IsNil() && l.SourceID.String() != f.SourceID.String() {
		return false
	}
	if !f.TargetID.IsNil() && l.TargetID.String() != f.TargetID.String() {
		return false
	}
	if f.LinkType != "" && l.LinkType != f.LinkType {
		return false
	}
	return true
}

func sortLinks(links []*link.Link) {
	sort.Slice(links, func(i, j int) bool { return links[i].ID.String() < links[j].ID.String() })
}

// ──────────────────────────────────────────────────
// Membership Store
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(_ context.Context, m *membership.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.memberships {
		if cur.ActorID == m.ActorID && cur.TenantID == m.TenantID {
			return fmt.Errorf("membership %s/%s: %w", m.ActorID, m.TenantID, store.ErrConflict)
		}
	}
	s.memberships[m.ID.String()] = copyMembership(m)
	return nil
}

func (s *Store) GetMembership(_ context.Context, actorID, tenantID string) (*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.ActorID == actorID && m.TenantID == tenantID {
			return copyMembership(m), nil
		}
	}
	return nil, fmt.Errorf("membership %s/%s: %w", actorID, tenantID, store.ErrNotFound)
}

func (s *Store) UpdateMembership(_ context.Context, m *membership.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[m.ID.String()]; !ok {
		return fmt.Errorf("membership %s: %w", m.ID, store.ErrNotFound)
	}
	s.memberships[m.ID.String()] = copyMembership(m)
	return nil
}

func (s *Store) DeleteMembership(_ context.Context, membershipID id.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[membershipID.String()]; !ok {
		return fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
	}
	delete(s.memberships, membershipID.String())
	return nil
}

func (s *Store) ListMembershipsForActor(_ context.Context, actorID string) ([]*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*membership.Membership
	for _, m := range s.memberships {
		if m.ActorID == actorID {
			out = append(out, copyMembership(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (s *Store) ListMemberships(_ context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*membership.Membership
	for _, m := range s.memberships {
		if membershipMatches(m, filter) {
			out = append(out, copyMembership(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	if filter != nil {
		out = window(out, filter.Limit, filter.Offset)
	}
	return out, nil
}

func (s *Store) CountMemberships(_ context.Context, filter *membership.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, m := range s.memberships {
		if membershipMatches(m, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteMembershipsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, m := range s.memberships {
		if m.TenantID == tenantID {
			delete(s.memberships, k)
		}
	}
	return nil
}

func membershipMatches(m *membership.Membership, f *membership.ListFilter) bool {
	if f == nil {
		return true
	}
	if f.ActorID != "" && m.ActorID != f.ActorID {
		return false
	}
	if f.TenantID != "" && m.TenantID != f.TenantID {
		return false
	}
	if f.Role != "" && m.Role != f.Role {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Schema Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDefinition(_ context.Context, d *schema.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.schemas {
		if cur.Type == d.Type && cur.Subtype == d.Subtype {
			return fmt.Errorf("schema %s/%s: %w", d.Type, d.Subtype, store.ErrConflict)
		}
	}
	s.schemas[d.ID.String()] = copyDefinition(d)
	return nil
}

func (s *Store) GetDefinition(_ context.Context, entityType, subtype string) (*schema.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.schemas {
		if d.Type == entityType && d.Subtype == subtype {
			return copyDefinition(d), nil
		}
	}
	return nil, fmt.Errorf("schema %s/%s: %w", entityType, subtype, store.ErrNotFound)
}

func (s *Store) UpdateDefinition(_ context.Context, d *schema.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemas[d.ID.String()]; !ok {
		return fmt.Errorf("schema %s: %w", d.ID, store.ErrNotFound)
	}
	s.schemas[d.ID.String()] = copyDefinition(d)
	return nil
}

func (s *Store) DeleteDefinition(_ context.Context, schemaID id.SchemaID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemas[schemaID.String()]; !ok {
		return fmt.Errorf("schema %s: %w", schemaID, store.ErrNotFound)
	}
	delete(s.schemas, schemaID.String())
	return nil
}

func (s *Store) ListDefinitions(_ context.Context, filter *schema.ListFilter) ([]*schema.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*schema.Definition
	for _, d := range s.schemas {
		if definitionMatches(d, filter) {
			out = append(out, copyDefinition(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Subtype < out[j].Subtype
	})
	if filter != nil {
		out = window(out, filter.Limit, filter.Offset)
	}
	return out, nil
}

func definitionMatches(d *schema.Definition, f *schema.ListFilter) bool {
	if f == nil {
		return true
	}
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(d.Type+"/"+d.Subtype), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Action Log Store
// ──────────────────────────────────────────────────

func (s *Store) AppendAction(_ context.Context, r *actionlog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[r.ID.String()] = copyRecord(r)
	return nil
}

func (s *Store) ListActions(_ context.Context, filter *actionlog.QueryFilter) ([]*actionlog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*actionlog.Record
	for _, r := range s.actions {
		if recordMatches(r, filter) {
			out = append(out, copyRecord(r))
		}
	}
	// Newest first; IDs are K-sortable so they break timestamp ties.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	if filter != nil {
		out = window(out, filter.Limit, filter.Offset)
	}
	return out, nil
}

func (s *Store) CountActions(_ context.Context, filter *actionlog.QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.actions {
		if recordMatches(r, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) PurgeActions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, r := range s.actions {
		if r.CreatedAt.Before(before) {
			delete(s.actions, k)
			n++
		}
	}
	return n, nil
}

func recordMatches(r *actionlog.Record, f *actionlog.QueryFilter) bool {
	if f == nil {
		return true
	}
	if f.TenantID != "" && r.TenantID != f.TenantID {
		return false
	}
	if f.ActorID != "" && r.ActorID != f.ActorID {
		return false
	}
	if f.Action != "" && r.Action != f.Action {
		return false
	}
	if f.Outcome != "" && r.Outcome != f.Outcome {
		return false
	}
	if f.After != nil && !r.CreatedAt.After(*f.After) {
		return false
	}
	if f.Before != nil && !r.CreatedAt.Before(*f.Before) {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func window[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func copyEntity(e *entity.Entity) *entity.Entity {
	c := *e
	c.CustomProperties = copyAttrs(e.CustomProperties)
	return &c
}

func copyLink(l *link.Link) *link.Link {
	c := *l
	c.Attrs = copyAttrs(l.Attrs)
	return &c
}

func copyMembership(m *membership.Membership) *membership.Membership {
	c := *m
	return &c
}

func copyDefinition(d *schema.Definition) *schema.Definition {
	c := *d
	c.Fields = append([]schema.FieldDef(nil), d.Fields...)
	c.Metadata = copyAttrs(d.Metadata)
	return &c
}

func copyRecord(r *actionlog.Record) *actionlog.Record {
	c := *r
	c.Metadata = copyAttrs(r.Metadata)
	return &c
}

func copyAttrs(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
