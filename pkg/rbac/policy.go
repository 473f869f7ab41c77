package rbac

import (
	"github.com/tillware/posgate/pkg/auth"
)

// PolicyTable is the static role-to-permission mapping used as the fallback
// authority when the backend cannot be reached. Lookups are total: unknown
// roles yield the empty set, never an error.
type PolicyTable struct {
	grants map[auth.Role]Set
}

// DefaultPolicy returns the built-in policy table. The grants mirror the
// backend's role defaults; admin holds the entire vocabulary.
func DefaultPolicy() *PolicyTable {
	return &PolicyTable{grants: map[auth.Role]Set{
		auth.RoleAdmin: NewSet(AllPermissions()...),
		auth.RoleManager: NewSet(
			PermReadUser, PermUpdateUser,
			PermCreateSale, PermReadSale, PermUpdateSale,
			PermCreateProduct, PermReadProduct, PermUpdateProduct,
			PermCreateInvoice, PermReadInvoice, PermUpdateInvoice,
			PermReadBranch, PermUpdateBranch,
			PermViewReports, PermExportReports,
		),
		auth.RoleCashier: NewSet(
			PermCreateSale, PermReadSale,
			PermReadProduct,
			PermCreateInvoice, PermReadInvoice,
			PermReadBranch,
		),
		auth.RoleViewer: NewSet(
			PermReadSale, PermReadProduct, PermReadInvoice, PermReadBranch,
		),
	}}
}

// PermissionsFor returns the grant set for a role. The returned set is a
// copy; mutating it does not touch the table.
func (t *PolicyTable) PermissionsFor(role auth.Role) Set {
	grants, ok := t.grants[role]
	if !ok {
		return Set{}
	}
	return grants.Clone()
}

// Allows reports whether the table grants permission p to role
func (t *PolicyTable) Allows(role auth.Role, p Permission) bool {
	return t.grants[role].Has(p)
}

// Roles returns every role the table has an entry for
func (t *PolicyTable) Roles() []auth.Role {
	roles := make([]auth.Role, 0, len(t.grants))
	for r := range t.grants {
		roles = append(roles, r)
	}
	return roles
}

// setRole replaces a role's grant set wholesale. Used by the policy file
// loader; the table is otherwise constant.
func (t *PolicyTable) setRole(role auth.Role, perms Set) {
	t.grants[role] = perms
}
