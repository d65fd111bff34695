package domain

// PermissionSet answers capability lookups for a resolved principal. The set
// of implementations is deliberately closed: a role-backed map and the
// super-admin variant that grants everything. Keeping the super-admin case
// an explicit type makes every grant path statically auditable.
type PermissionSet interface {
	Has(permission string) bool
}

// RolePermissions is a PermissionSet backed by a role's permission map.
type RolePermissions map[string]bool

// Has reports whether the permission is granted.
func (p RolePermissions) Has(permission string) bool {
	return p[permission]
}

// SuperAdminPermissions grants every permission.
type SuperAdminPermissions struct{}

// Has always reports true.
func (SuperAdminPermissions) Has(string) bool { return true }

// NoPermissions denies every permission. Resolved for principals with no
// membership on the current tenant; absence of permission is not an error.
type NoPermissions struct{}

// Has always reports false.
func (NoPermissions) Has(string) bool { return false }

// KeyScopedPermissions narrows a base set to what an API key was issued for.
// A permission is granted only when both the base set and the key's own map
// grant it, so a key can never escalate past the owner's role.
type KeyScopedPermissions struct {
	Base    PermissionSet
	Allowed map[string]bool
}

// Has reports whether both the base set and the key grant the permission.
func (p KeyScopedPermissions) Has(permission string) bool {
	return p.Allowed[permission] && p.Base.Has(permission)
}
