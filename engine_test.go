package fabric

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
	"github.com/xraph/fabric/store/memory"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(append([]Option{WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

func seedMember(t *testing.T, s *memory.Store, actorID, tenantID string, role Role) {
	t.Helper()
	err := s.CreateMembership(context.Background(), &membership.Membership{
		ID:        id.NewMembershipID(),
		ActorID:   actorID,
		TenantID:  tenantID,
		Role:      string(role),
		GrantedBy: "seed",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func seedSchema(t *testing.T, s *memory.Store, entityType, subtype string, fields ...schema.FieldDef) {
	t.Helper()
	now := time.Now().UTC()
	err := s.CreateDefinition(context.Background(), &schema.Definition{
		ID:        id.NewSchemaID(),
		Type:      entityType,
		Subtype:   subtype,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func actorCtx(actorID string) context.Context {
	return WithActor(context.Background(), actorID)
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine()
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestCreateEntityFlow(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "product", "ticketed_event",
		schema.FieldDef{Name: "capacity", Kind: schema.KindNumber, Required: true},
	)

	ent, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{
		Type:             "product",
		Subtype:          "ticketed_event",
		Name:             "Spring Gala",
		CustomProperties: map[string]any{"capacity": 300},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ent.TenantID != "t1" {
		t.Fatalf("tenant = %q, want t1", ent.TenantID)
	}
	if ent.Status != entity.StatusDraft {
		t.Fatalf("status = %q, want draft", ent.Status)
	}
	if ent.CreatedBy != "u1" {
		t.Fatalf("created_by = %q, want u1", ent.CreatedBy)
	}

	// The creation is audited.
	n, err := s.CountActions(context.Background(), &actionlog.QueryFilter{
		TenantID: "t1", Action: CapEntityCreate, Outcome: actionlog.OutcomeSuccess,
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("success records = %d, want 1", n)
	}
}

func TestCreateEntity_RequiresSchema(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)

	_, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{
		Type: "product", Name: "No Definition",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unregistered type, got %v", err)
	}
}

func TestCreateEntity_SchemaValidation(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "product", "",
		schema.FieldDef{Name: "sku", Kind: schema.KindString, Required: true},
	)

	// Missing required field.
	_, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{
		Type: "product", Name: "p",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing required field, got %v", err)
	}

	// Wrong kind.
	_, err = eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{
		Type: "product", Name: "p",
		CustomProperties: map[string]any{"sku": 42},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for wrong kind, got %v", err)
	}

	// Unknown field.
	_, err = eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{
		Type: "product", Name: "p",
		CustomProperties: map[string]any{"sku": "A-1", "color": "red"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown field, got %v", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedMember(t, s, "u2", "t2", RoleMember)
	seedSchema(t, s, "service", "")

	ent, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: "billing"})
	if err != nil {
		t.Fatal(err)
	}

	// Another tenant's member cannot tell the record apart from a missing one.
	_, err = eng.GetEntity(actorCtx("u2"), ent.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}

	// An elevated context sees across tenants.
	seedMember(t, s, "root", SystemTenant, RoleSuperAdmin)
	got, err := eng.GetEntity(actorCtx("root"), ent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TenantID != "t1" {
		t.Fatalf("tenant = %q, want t1", got.TenantID)
	}

	ents, err := eng.ListEntities(actorCtx("u2"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 0 {
		t.Fatalf("t2 sees %d entities, want 0", len(ents))
	}
}

func TestUpdateEntity_ImmutableFields(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "service", "")

	ent, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: "billing"})
	if err != nil {
		t.Fatal(err)
	}

	other := "queue"
	_, err = eng.UpdateEntity(actorCtx("u1"), ent.ID, &EntityPatch{Type: &other})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for type change, got %v", err)
	}

	tenant := "t2"
	_, err = eng.UpdateEntity(actorCtx("u1"), ent.ID, &EntityPatch{TenantID: &tenant})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for tenant change, got %v", err)
	}

	archived := string(entity.StatusArchived)
	_, err = eng.UpdateEntity(actorCtx("u1"), ent.ID, &EntityPatch{Status: &archived})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for archiving via patch, got %v", err)
	}
}

func TestUpdateEntity_Patch(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "service", "")

	ent, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: "billing"})
	if err != nil {
		t.Fatal(err)
	}

	name := "billing-v2"
	active := string(entity.StatusActive)
	updated, err := eng.UpdateEntity(actorCtx("u1"), ent.ID, &EntityPatch{Name: &name, Status: &active})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "billing-v2" || updated.Status != entity.StatusActive {
		t.Fatalf("patch not applied: %+v", updated)
	}
}

func TestPermissionDenied_RecordsOneDenial(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "v1", "t1", RoleViewer)
	seedSchema(t, s, "service", "")

	_, err := eng.CreateEntity(actorCtx("v1"), &CreateEntityRequest{Type: "service", Name: "nope"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for viewer create, got %v", err)
	}

	n, err := s.CountActions(context.Background(), &actionlog.QueryFilter{
		ActorID: "v1", Outcome: actionlog.OutcomeDenied,
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("denial records = %d, want exactly 1", n)
	}
}

func TestCreateLink_DuplicateEdge(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "service", "")

	src, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: "api"})
	if err != nil {
		t.Fatal(err)
	}
	dst, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: "db"})
	if err != nil {
		t.Fatal(err)
	}

	req := &CreateLinkRequest{SourceID: src.ID, TargetID: dst.ID, LinkType: "depends_on"}
	if _, err := eng.CreateLink(actorCtx("u1"), req); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateLink(actorCtx("u1"), req); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate edge, got %v", err)
	}

	// Same endpoints under a different type is a distinct edge.
	if _, err := eng.CreateLink(actorCtx("u1"), &CreateLinkRequest{
		SourceID: src.ID, TargetID: dst.ID, LinkType: "routes_to",
	}); err != nil {
		t.Fatal(err)
	}
}

func TestCreateLink_ReservedType(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "service", "")

	src, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: "api"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = eng.CreateLink(actorCtx("u1"), &CreateLinkRequest{
		SourceID: src.ID, TargetID: src.ID, LinkType: link.AvailabilityType,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for reserved link type, got %v", err)
	}
}

func TestGrantRole_StrictlyLower(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "mgr", "t1", RoleManager)
	seedMember(t, s, "owner", "t1", RoleOrgOwner)

	// A manager may grant roles strictly below manager.
	m, err := eng.GrantRole(actorCtx("mgr"), "newbie", RoleMember)
	if err != nil {
		t.Fatal(err)
	}
	if m.Role != string(RoleMember) || m.TenantID != "t1" {
		t.Fatalf("unexpected membership %+v", m)
	}

	// Granting the grantor's own level is refused.
	if _, err := eng.GrantRole(actorCtx("mgr"), "peer", RoleManager); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for equal grant, got %v", err)
	}

	// Granting above the grantor is refused.
	if _, err := eng.GrantRole(actorCtx("mgr"), "boss", RoleOrgOwner); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for higher grant, got %v", err)
	}

	// A manager cannot replace a membership it does not outrank.
	if _, err := eng.GrantRole(actorCtx("mgr"), "owner", RoleMember); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied replacing an owner, got %v", err)
	}

	// Members do not carry the grant capability at all.
	if _, err := eng.GrantRole(actorCtx("newbie"), "x", RoleViewer); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for member grant, got %v", err)
	}
}

func TestRevokeRole(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "owner", "t1", RoleOrgOwner)
	seedMember(t, s, "mgr", "t1", RoleManager)

	if err := eng.RevokeRole(actorCtx("owner"), "mgr"); err != nil {
		t.Fatal(err)
	}

	// The revoked actor resolves to no tenant now.
	_, err := eng.ListEntities(actorCtx("mgr"), nil)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied after revoke, got %v", err)
	}

	// A manager cannot revoke an owner.
	seedMember(t, s, "mgr2", "t1", RoleManager)
	err = eng.RevokeRole(actorCtx("mgr2"), "owner")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied revoking an owner, got %v", err)
	}
}

func TestAvailabilityLifecycle(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "root", SystemTenant, RoleSuperAdmin)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "template", "")

	// The platform operator creates a system-owned catalog record.
	tpl, err := eng.CreateEntity(actorCtx("root"), &CreateEntityRequest{Type: "template", Name: "starter"})
	if err != nil {
		t.Fatal(err)
	}
	if tpl.TenantID != SystemTenant {
		t.Fatalf("tenant = %q, want system", tpl.TenantID)
	}

	// Invisible to the tenant until shared.
	if _, err := eng.GetEntity(actorCtx("u1"), tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before share, got %v", err)
	}

	// Tenant members cannot manage availability.
	err = eng.SetAvailability(actorCtx("u1"), "t1", tpl.ID, true)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for member, got %v", err)
	}

	if err := eng.SetAvailability(actorCtx("root"), "t1", tpl.ID, true); err != nil {
		t.Fatal(err)
	}

	got, err := eng.GetEntity(actorCtx("u1"), tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != tpl.ID.String() {
		t.Fatalf("got entity %s, want %s", got.ID, tpl.ID)
	}

	// Shared records appear in listings alongside the tenant's own.
	ents, err := eng.ListEntities(actorCtx("u1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 {
		t.Fatalf("t1 sees %d entities, want 1", len(ents))
	}

	// Shared, not owned: mutation is a scope violation, and the attempt
	// lands in the action log as exactly one denial.
	name := "mine now"
	_, err = eng.UpdateEntity(actorCtx("u1"), tpl.ID, &EntityPatch{Name: &name})
	if !errors.Is(err, ErrScopeViolation) {
		t.Fatalf("expected ErrScopeViolation updating a share, got %v", err)
	}
	denied, err := s.CountActions(context.Background(), &actionlog.QueryFilter{
		ActorID: "u1", Action: CapEntityUpdate, Outcome: actionlog.OutcomeDenied,
	})
	if err != nil {
		t.Fatal(err)
	}
	if denied != 1 {
		t.Fatalf("scope violation denial records = %d, want exactly 1", denied)
	}

	// Disabling hides the record on the very next read.
	if err := eng.SetAvailability(actorCtx("root"), "t1", tpl.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.GetEntity(actorCtx("u1"), tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after disable, got %v", err)
	}
}

func TestSetAvailability_RegularEntityRejected(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "root", SystemTenant, RoleSuperAdmin)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "service", "")

	ent, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: "api"})
	if err != nil {
		t.Fatal(err)
	}

	err = eng.SetAvailability(actorCtx("root"), "t2", ent.ID, true)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation sharing a tenant-owned entity, got %v", err)
	}
}

func TestArchiveEntity_BlockedByLinks(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "mgr", "t1", RoleManager)
	seedSchema(t, s, "service", "")

	src, err := eng.CreateEntity(actorCtx("mgr"), &CreateEntityRequest{Type: "service", Name: "api"})
	if err != nil {
		t.Fatal(err)
	}
	dst, err := eng.CreateEntity(actorCtx("mgr"), &CreateEntityRequest{Type: "service", Name: "db"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateLink(actorCtx("mgr"), &CreateLinkRequest{
		SourceID: src.ID, TargetID: dst.ID, LinkType: "depends_on",
	}); err != nil {
		t.Fatal(err)
	}

	// Default policy blocks the archive while links remain.
	_, err = eng.ArchiveEntity(actorCtx("mgr"), dst.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for blocked archive, got %v", err)
	}
}

func TestArchiveEntity_CascadePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArchivePolicies = []link.Policy{{LinkType: "depends_on", OnArchive: link.ArchiveCascade}}

	eng, s := newTestEngine(t, WithConfig(cfg))
	seedMember(t, s, "mgr", "t1", RoleManager)
	seedSchema(t, s, "service", "")

	src, err := eng.CreateEntity(actorCtx("mgr"), &CreateEntityRequest{Type: "service", Name: "api"})
	if err != nil {
		t.Fatal(err)
	}
	dst, err := eng.CreateEntity(actorCtx("mgr"), &CreateEntityRequest{Type: "service", Name: "db"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateLink(actorCtx("mgr"), &CreateLinkRequest{
		SourceID: src.ID, TargetID: dst.ID, LinkType: "depends_on",
	}); err != nil {
		t.Fatal(err)
	}

	archived, err := eng.ArchiveEntity(actorCtx("mgr"), dst.ID)
	if err != nil {
		t.Fatal(err)
	}
	if archived.Status != entity.StatusArchived {
		t.Fatalf("status = %q, want archived", archived.Status)
	}

	// Cascaded links are gone.
	links, err := eng.LinksFrom(actorCtx("mgr"), src.ID, "depends_on")
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Fatalf("links remaining = %d, want 0", len(links))
	}

	// Archiving again is a no-op.
	if _, err := eng.ArchiveEntity(actorCtx("mgr"), dst.ID); err != nil {
		t.Fatal(err)
	}
}

func TestNeighborsAndReachable(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "service", "")

	names := []string{"a", "b", "c", "d"}
	ents := make([]*entity.Entity, len(names))
	for i, n := range names {
		ent, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: n})
		if err != nil {
			t.Fatal(err)
		}
		ents[i] = ent
	}

	// a -> b -> c, a -> d
	for _, pair := range [][2]int{{0, 1}, {1, 2}, {0, 3}} {
		if _, err := eng.CreateLink(actorCtx("u1"), &CreateLinkRequest{
			SourceID: ents[pair[0]].ID, TargetID: ents[pair[1]].ID, LinkType: "calls",
		}); err != nil {
			t.Fatal(err)
		}
	}

	neighbors, err := eng.Neighbors(actorCtx("u1"), ents[0].ID, "calls", DirectionForward)
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("forward neighbors = %d, want 2", len(neighbors))
	}

	back, err := eng.Neighbors(actorCtx("u1"), ents[1].ID, "calls", DirectionBackward)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0].Name != "a" {
		t.Fatalf("backward neighbors = %v, want [a]", back)
	}

	reached, err := eng.Reachable(actorCtx("u1"), ents[0].ID, "calls", DirectionForward)
	if err != nil {
		t.Fatal(err)
	}
	if len(reached) != 3 {
		t.Fatalf("reachable = %d, want 3", len(reached))
	}
}

func TestReachable_DepthLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTraversalDepth = 2

	eng, s := newTestEngine(t, WithConfig(cfg))
	seedMember(t, s, "u1", "t1", RoleMember)
	seedSchema(t, s, "service", "")

	var start, prev *entity.Entity
	for _, n := range []string{"a", "b", "c", "d"} {
		ent, err := eng.CreateEntity(actorCtx("u1"), &CreateEntityRequest{Type: "service", Name: n})
		if err != nil {
			t.Fatal(err)
		}
		if prev != nil {
			if _, err := eng.CreateLink(actorCtx("u1"), &CreateLinkRequest{
				SourceID: prev.ID, TargetID: ent.ID, LinkType: "calls",
			}); err != nil {
				t.Fatal(err)
			}
		} else {
			start = ent
		}
		prev = ent
	}

	// The chain is three hops deep; a limit of two fails loudly rather than
	// silently truncating.
	_, err := eng.Reachable(actorCtx("u1"), start.ID, "calls", DirectionForward)
	if !errors.Is(err, ErrTraversalDepthExceeded) {
		t.Fatalf("expected ErrTraversalDepthExceeded, got %v", err)
	}

	// Two hops from the second node fit inside the limit.
	reached, err := eng.Reachable(actorCtx("u1"), mustLinkTarget(t, eng, start.ID), "calls", DirectionForward)
	if err != nil {
		t.Fatal(err)
	}
	if len(reached) != 2 {
		t.Fatalf("reachable = %d, want 2", len(reached))
	}
}

// mustLinkTarget follows the single outgoing "calls" edge of an entity.
func mustLinkTarget(t *testing.T, eng *Engine, from id.EntityID) id.EntityID {
	t.Helper()
	links, err := eng.LinksFrom(actorCtx("u1"), from, "calls")
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 {
		t.Fatalf("outgoing links = %d, want 1", len(links))
	}
	return links[0].TargetID
}

func TestActionsQuery_TenantScoped(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "owner1", "t1", RoleOrgOwner)
	seedMember(t, s, "owner2", "t2", RoleOrgOwner)
	seedSchema(t, s, "service", "")

	if _, err := eng.CreateEntity(actorCtx("owner1"), &CreateEntityRequest{Type: "service", Name: "api"}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateEntity(actorCtx("owner2"), &CreateEntityRequest{Type: "service", Name: "api"}); err != nil {
		t.Fatal(err)
	}

	records, err := eng.Actions(actorCtx("owner1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		if r.TenantID != "t1" {
			t.Fatalf("t1 owner sees record from tenant %q", r.TenantID)
		}
	}
	if len(records) == 0 {
		t.Fatal("expected at least one record for t1")
	}

	// Managers and below do not hold audit:view.
	seedMember(t, s, "mgr", "t1", RoleManager)
	if _, err := eng.Actions(actorCtx("mgr"), nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for manager audit query, got %v", err)
	}
}

func TestRegisterSchema_ElevatedOnly(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "root", SystemTenant, RoleSuperAdmin)
	seedMember(t, s, "owner", "t1", RoleOrgOwner)

	def := &schema.Definition{
		Type: "product", Subtype: "ticketed_event",
		Fields: []schema.FieldDef{{Name: "capacity", Kind: schema.KindNumber}},
	}

	// No tenant role carries schema:manage, org owners included.
	if _, err := eng.RegisterSchema(actorCtx("owner"), def); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for owner, got %v", err)
	}

	created, err := eng.RegisterSchema(actorCtx("root"), def)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID.IsNil() {
		t.Fatal("expected assigned schema ID")
	}

	// Re-registering the same pair replaces the definition in place.
	def2 := &schema.Definition{
		Type: "product", Subtype: "ticketed_event",
		Fields: []schema.FieldDef{{Name: "capacity", Kind: schema.KindNumber, Required: true}},
	}
	updated, err := eng.RegisterSchema(actorCtx("root"), def2)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID.String() != created.ID.String() {
		t.Fatalf("replacement produced new ID %s, want %s", updated.ID, created.ID)
	}
	if !updated.Fields[0].Required {
		t.Fatal("replacement fields not applied")
	}

	// Any member can read definitions.
	seedMember(t, s, "u1", "t1", RoleViewer)
	defs, err := eng.Schemas(actorCtx("u1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 {
		t.Fatalf("definitions = %d, want 1", len(defs))
	}
}

func TestCheck_ResolvesContext(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)

	rc, err := eng.Check(actorCtx("u1"), CapEntityCreate, "")
	if err != nil {
		t.Fatal(err)
	}
	if rc.TenantID != "t1" || rc.Role != RoleMember || rc.Elevated {
		t.Fatalf("unexpected context %+v", rc)
	}

	if _, err := eng.Check(actorCtx("u1"), CapMemberGrant, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	// Unknown actors resolve to nothing.
	if _, err := eng.Check(actorCtx("ghost"), CapEntityView, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for unknown actor, got %v", err)
	}
}

func TestMultiTenantActor_RequiresTenant(t *testing.T) {
	eng, s := newTestEngine(t)
	seedMember(t, s, "u1", "t1", RoleMember)
	seedMember(t, s, "u1", "t2", RoleViewer)
	seedSchema(t, s, "service", "")

	// Ambiguous without a requested tenant.
	_, err := eng.ListEntities(actorCtx("u1"), nil)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for ambiguous tenant, got %v", err)
	}

	ctx := WithTenant(actorCtx("u1"), "t1")
	ent, err := eng.CreateEntity(ctx, &CreateEntityRequest{Type: "service", Name: "api"})
	if err != nil {
		t.Fatal(err)
	}
	if ent.TenantID != "t1" {
		t.Fatalf("tenant = %q, want t1", ent.TenantID)
	}

	// Acting in t2 the same actor is only a viewer.
	ctx2 := WithTenant(actorCtx("u1"), "t2")
	if _, err := eng.CreateEntity(ctx2, &CreateEntityRequest{Type: "service", Name: "api"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied in t2, got %v", err)
	}

	// Requesting a tenant the actor does not belong to fails closed.
	ctx3 := WithTenant(actorCtx("u1"), "t3")
	if _, err := eng.ListEntities(ctx3, nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for foreign tenant, got %v", err)
	}
}
