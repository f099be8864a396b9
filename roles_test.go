package fabric

import "testing"

func TestRoleOutranks(t *testing.T) {
	cases := []struct {
		a, b Role
		want bool
	}{
		{RoleSuperAdmin, RoleEnterpriseOwner, true},
		{RoleOrgOwner, RoleManager, true},
		{RoleManager, RoleManager, false},
		{RoleViewer, RoleMember, false},
		{Role("bogus"), RoleViewer, false},
		{RoleViewer, Role("bogus"), true},
	}
	for _, c := range cases {
		if got := c.a.Outranks(c.b); got != c.want {
			t.Errorf("Outranks(%s, %s) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestCanGrant(t *testing.T) {
	if !CanGrant(RoleManager, RoleMember) {
		t.Error("manager should grant member")
	}
	if CanGrant(RoleManager, RoleManager) {
		t.Error("equal grant must be refused")
	}
	if CanGrant(RoleMember, RoleOrgOwner) {
		t.Error("upward grant must be refused")
	}
	if CanGrant(RoleSuperAdmin, Role("bogus")) {
		t.Error("unknown target must be refused")
	}
}

func TestGrantsDenyByDefault(t *testing.T) {
	ev := DefaultEvaluator()

	viewer := &Context{ActorID: "v", TenantID: "t1", Role: RoleViewer}
	if d := ev.Check(viewer, CapEntityView, ""); !d.Allowed {
		t.Errorf("viewer entity:view denied: %s", d.Reason)
	}
	if d := ev.Check(viewer, CapEntityCreate, ""); d.Allowed {
		t.Error("viewer entity:create should be denied")
	}

	owner := &Context{ActorID: "o", TenantID: "t1", Role: RoleOrgOwner}
	if d := ev.Check(owner, CapEntityArchive, ""); !d.Allowed {
		t.Errorf("owner entity:archive denied via glob: %s", d.Reason)
	}
	if d := ev.Check(owner, CapSchemaManage, ""); d.Allowed {
		t.Error("schema:manage must not be grantable to tenant roles")
	}
	if d := ev.Check(owner, CapAvailabilityManage, ""); d.Allowed {
		t.Error("availability:manage must not be grantable to tenant roles")
	}

	elevated := &Context{ActorID: "root", Role: RoleSuperAdmin, Elevated: true}
	if d := ev.Check(elevated, CapSchemaManage, ""); !d.Allowed {
		t.Errorf("super_admin schema:manage denied: %s", d.Reason)
	}
}

func TestMatchCapability(t *testing.T) {
	cases := []struct {
		granted, required string
		want              bool
	}{
		{"entity:view", "entity:view", true},
		{"entity:*", "entity:archive", true},
		{"entity:*", "link:view", false},
		{"*", "anything:at-all", true},
		{"entity:view", "entity:viewing", false},
	}
	for _, c := range cases {
		if got := matchCapability(c.granted, c.required); got != c.want {
			t.Errorf("matchCapability(%q, %q) = %v, want %v", c.granted, c.required, got, c.want)
		}
	}
}
