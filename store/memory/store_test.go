package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/fabric/actionlog"
	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
	"github.com/xraph/fabric/membership"
	"github.com/xraph/fabric/schema"
	"github.com/xraph/fabric/store"
)

func TestEntityCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &entity.Entity{
		ID:       id.NewEntityID(),
		TenantID: "t1",
		Type:     "service",
		Subtype:  "api",
		Name:     "billing",
		Status:   entity.StatusDraft,
	}

	// Create
	if err := s.CreateEntity(ctx, e); err != nil {
		t.Fatal(err)
	}

	// Get
	got, err := s.GetEntity(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "billing" {
		t.Fatalf("expected billing, got %s", got.Name)
	}

	// Update
	got.Name = "billing-v2"
	if err := s.UpdateEntity(ctx, got); err != nil {
		t.Fatal(err)
	}
	got2, _ := s.GetEntity(ctx, e.ID)
	if got2.Name != "billing-v2" {
		t.Fatal("update failed")
	}

	// List
	list, _ := s.ListEntities(ctx, &entity.ListFilter{TenantID: "t1", Type: "service"})
	if len(list) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(list))
	}

	// Count
	count, _ := s.CountEntities(ctx, &entity.ListFilter{TenantID: "t1"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Search by name fragment
	list, _ = s.ListEntities(ctx, &entity.ListFilter{Search: "BILLING"})
	if len(list) != 1 {
		t.Fatalf("expected case-insensitive search hit, got %d", len(list))
	}

	// A nil filter means everything, same as the other list methods.
	list, err = s.ListEntities(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entity with nil filter, got %d", len(list))
	}
}

func TestEntityStaleUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &entity.Entity{
		ID:       id.NewEntityID(),
		TenantID: "t1",
		Type:     "service",
		Name:     "svc",
		Status:   entity.StatusActive,
	}
	if err := s.CreateEntity(ctx, e); err != nil {
		t.Fatal(err)
	}

	// Two readers see the same version.
	a, _ := s.GetEntity(ctx, e.ID)
	b, _ := s.GetEntity(ctx, e.ID)

	a.Name = "svc-a"
	if err := s.UpdateEntity(ctx, a); err != nil {
		t.Fatal(err)
	}

	b.Name = "svc-b"
	err := s.UpdateEntity(ctx, b)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for stale writer, got %v", err)
	}

	got, _ := s.GetEntity(ctx, e.ID)
	if got.Name != "svc-a" {
		t.Fatal("first writer should win")
	}
}

func TestLinkCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	src := id.NewEntityID()
	dst := id.NewEntityID()
	l := &link.Link{
		ID:       id.NewLinkID(),
		TenantID: "t1",
		SourceID: src,
		TargetID: dst,
		LinkType: "depends_on",
	}

	if err := s.CreateLink(ctx, l); err != nil {
		t.Fatal(err)
	}

	// Duplicate edge is a conflict.
	dup := &link.Link{
		ID:       id.NewLinkID(),
		TenantID: "t1",
		SourceID: src,
		TargetID: dst,
		LinkType: "depends_on",
	}
	if err := s.CreateLink(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate edge, got %v", err)
	}

	// Same endpoints, different type is a distinct edge.
	other := &link.Link{
		ID:       id.NewLinkID(),
		TenantID: "t1",
		SourceID: src,
		TargetID: dst,
		LinkType: "routes_to",
	}
	if err := s.CreateLink(ctx, other); err != nil {
		t.Fatal(err)
	}

	// FindLink
	found, err := s.FindLink(ctx, "t1", src, dst, "depends_on")
	if err != nil {
		t.Fatal(err)
	}
	if found.ID.String() != l.ID.String() {
		t.Fatal("find lookup mismatch")
	}

	// Traversal indexes
	from, _ := s.ListLinksFrom(ctx, src, "")
	if len(from) != 2 {
		t.Fatalf("expected 2 outbound links, got %d", len(from))
	}
	to, _ := s.ListLinksTo(ctx, dst, "depends_on")
	if len(to) != 1 {
		t.Fatalf("expected 1 inbound depends_on link, got %d", len(to))
	}

	// UpdateLinkAttrs
	if err := s.UpdateLinkAttrs(ctx, l.ID, map[string]any{"weight": 3}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetLink(ctx, l.ID)
	if got.Attrs["weight"] != 3 {
		t.Fatal("attrs not updated")
	}

	// Delete
	if err := s.DeleteLink(ctx, l.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetLink(ctx, l.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteLinksForEntity(t *testing.T) {
	ctx := context.Background()
	s := New()

	hub := id.NewEntityID()
	a := id.NewEntityID()
	b := id.NewEntityID()

	_ = s.CreateLink(ctx, &link.Link{ID: id.NewLinkID(), TenantID: "t1", SourceID: hub, TargetID: a, LinkType: "depends_on"})
	_ = s.CreateLink(ctx, &link.Link{ID: id.NewLinkID(), TenantID: "t1", SourceID: b, TargetID: hub, LinkType: "depends_on"})
	_ = s.CreateLink(ctx, &link.Link{ID: id.NewLinkID(), TenantID: "t1", SourceID: hub, TargetID: a, LinkType: "routes_to"})
	// Availability self-edge must survive a cascade.
	_ = s.CreateLink(ctx, &link.Link{ID: id.NewLinkID(), TenantID: "t2", SourceID: hub, TargetID: hub, LinkType: link.AvailabilityType})

	count, _ := s.CountLinksForEntity(ctx, hub)
	if count != 3 {
		t.Fatalf("expected 3 non-availability links, got %d", count)
	}

	n, err := s.DeleteLinksForEntity(ctx, hub, "depends_on")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}

	n, _ = s.DeleteLinksForEntity(ctx, hub, "")
	if n != 1 {
		t.Fatalf("expected 1 remaining non-availability link deleted, got %d", n)
	}

	avail, _ := s.ListLinksFrom(ctx, hub, link.AvailabilityType)
	if len(avail) != 1 {
		t.Fatal("availability edge should survive cascades")
	}
}

func TestMembershipCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	m := &membership.Membership{
		ID:       id.NewMembershipID(),
		ActorID:  "u1",
		TenantID: "t1",
		Role:     "editor",
	}

	if err := s.CreateMembership(ctx, m); err != nil {
		t.Fatal(err)
	}

	// One membership per actor per tenant.
	dup := &membership.Membership{
		ID:       id.NewMembershipID(),
		ActorID:  "u1",
		TenantID: "t1",
		Role:     "viewer",
	}
	if err := s.CreateMembership(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate membership, got %v", err)
	}

	got, err := s.GetMembership(ctx, "u1", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != "editor" {
		t.Fatal("mismatch")
	}

	// Same actor in another tenant is fine.
	_ = s.CreateMembership(ctx, &membership.Membership{ID: id.NewMembershipID(), ActorID: "u1", TenantID: "t2", Role: "admin"})
	all, _ := s.ListMembershipsForActor(ctx, "u1")
	if len(all) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(all))
	}

	got.Role = "admin"
	if err := s.UpdateMembership(ctx, got); err != nil {
		t.Fatal(err)
	}
	got2, _ := s.GetMembership(ctx, "u1", "t1")
	if got2.Role != "admin" {
		t.Fatal("role change not persisted")
	}

	if err := s.DeleteMembership(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetMembership(ctx, "u1", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_ = s.DeleteMembershipsByTenant(ctx, "t2")
	count, _ := s.CountMemberships(ctx, &membership.ListFilter{TenantID: "t2"})
	if count != 0 {
		t.Fatal("tenant memberships not deleted")
	}
}

func TestSchemaCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	d := &schema.Definition{
		ID:      id.NewSchemaID(),
		Type:    "service",
		Subtype: "api",
		Fields: []schema.FieldDef{
			{Name: "port", Kind: schema.KindNumber, Required: true},
		},
	}

	if err := s.CreateDefinition(ctx, d); err != nil {
		t.Fatal(err)
	}

	dup := &schema.Definition{ID: id.NewSchemaID(), Type: "service", Subtype: "api"}
	if err := s.CreateDefinition(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate (type, subtype), got %v", err)
	}

	got, err := s.GetDefinition(ctx, "service", "api")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Fields) != 1 {
		t.Fatal("fields not preserved")
	}

	got.Description = "service APIs"
	if err := s.UpdateDefinition(ctx, got); err != nil {
		t.Fatal(err)
	}

	list, _ := s.ListDefinitions(ctx, &schema.ListFilter{Type: "service"})
	if len(list) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(list))
	}

	if err := s.DeleteDefinition(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDefinition(ctx, "service", "api"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestActionLog(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Now().UTC()
	for i, outcome := range []actionlog.Outcome{actionlog.OutcomeSuccess, actionlog.OutcomeDenied, actionlog.OutcomeSuccess} {
		r := &actionlog.Record{
			ID:        id.NewActionID(),
			ActorID:   "u1",
			TenantID:  "t1",
			Action:    "entity:create",
			Outcome:   outcome,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.AppendAction(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	// Newest first.
	logs, err := s.ListActions(ctx, &actionlog.QueryFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(logs))
	}
	if logs[0].CreatedAt.Before(logs[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	denied, _ := s.ListActions(ctx, &actionlog.QueryFilter{Outcome: actionlog.OutcomeDenied})
	if len(denied) != 1 {
		t.Fatalf("expected 1 denied record, got %d", len(denied))
	}

	count, _ := s.CountActions(ctx, &actionlog.QueryFilter{ActorID: "u1"})
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	// Purge everything before the last record.
	purged, _ := s.PurgeActions(ctx, base.Add(2*time.Second))
	if purged != 2 {
		t.Fatalf("expected 2 purged, got %d", purged)
	}
}

func TestMigratePingClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
