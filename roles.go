package fabric

// Role is a position in the platform's fixed role hierarchy.
type Role string

// Roles, highest first. The order is total and never changes at runtime.
const (
	RoleSuperAdmin      Role = "super_admin"
	RoleEnterpriseOwner Role = "enterprise_owner"
	RoleOrgOwner        Role = "org_owner"
	RoleManager         Role = "manager"
	RoleMember          Role = "member"
	RoleViewer          Role = "viewer"
)

// hierarchy holds every role ordered from most to least senior. The grant
// rule ("who may grant which role") reads this; capability checks read the
// grants table below. The two are kept separate so each can be tested on
// its own.
var hierarchy = []Role{
	RoleSuperAdmin,
	RoleEnterpriseOwner,
	RoleOrgOwner,
	RoleManager,
	RoleMember,
	RoleViewer,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.rank() >= 0
}

// rank returns the position in the hierarchy (0 = most senior), or -1 for
// an unknown role.
func (r Role) rank() int {
	for i, h := range hierarchy {
		if h == r {
			return i
		}
	}
	return -1
}

// Outranks reports whether r is strictly more senior than other. Unknown
// roles outrank nothing and are outranked by everything known.
func (r Role) Outranks(other Role) bool {
	ri, oi := r.rank(), other.rank()
	if ri < 0 {
		return false
	}
	if oi < 0 {
		return true
	}
	return ri < oi
}

// CanGrant reports whether a holder of grantor may grant target to another
// actor. A role may only grant roles strictly lower than its own; equal or
// higher grants are always refused, independent of capability checks.
func CanGrant(grantor, target Role) bool {
	return target.Valid() && grantor.Outranks(target)
}

// Capability names. Capabilities are "resource:action" strings matched
// with trailing-glob support, same format the grants table uses.
const (
	CapEntityCreate  = "entity:create"
	CapEntityView    = "entity:view"
	CapEntityUpdate  = "entity:update"
	CapEntityArchive = "entity:archive"

	CapLinkCreate = "link:create"
	CapLinkView   = "link:view"
	CapLinkDelete = "link:delete"

	CapMemberView   = "member:view"
	CapMemberGrant  = "member:grant"
	CapMemberRevoke = "member:revoke"

	CapAuditView = "audit:view"

	// CapAvailabilityManage and CapSchemaManage are deliberately absent
	// from every tenant role: availability edges and schema definitions
	// are platform-owned, reachable only through the elevated bypass.
	CapAvailabilityManage = "availability:manage"
	CapSchemaManage       = "schema:manage"
)

// grants is the explicit role→capability table. Deny-by-default: anything
// not listed here is denied for that role. Sets are spelled out per role
// rather than computed by inheritance, so a role's grants can change
// without touching its neighbors.
var grants = map[Role][]string{
	RoleViewer: {
		CapEntityView,
		CapLinkView,
	},
	RoleMember: {
		CapEntityView,
		CapEntityCreate,
		CapEntityUpdate,
		CapLinkView,
		CapLinkCreate,
	},
	RoleManager: {
		CapEntityView,
		CapEntityCreate,
		CapEntityUpdate,
		CapEntityArchive,
		CapLinkView,
		CapLinkCreate,
		CapLinkDelete,
		CapMemberView,
		CapMemberGrant,
	},
	RoleOrgOwner: {
		"entity:*",
		"link:*",
		CapMemberView,
		CapMemberGrant,
		CapMemberRevoke,
		CapAuditView,
	},
	RoleEnterpriseOwner: {
		"entity:*",
		"link:*",
		"member:*",
		CapAuditView,
	},
	RoleSuperAdmin: {
		"*",
	},
}

// Grants returns a copy of the capability set for a role. Unknown roles
// have no grants.
func Grants(r Role) []string {
	g := grants[r]
	out := make([]string, len(g))
	copy(out, g)
	return out
}
