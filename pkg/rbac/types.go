package rbac

// Permission is an atomic named capability of the form <action>_<resource>.
// The resolver treats permissions as opaque identifiers; the structure exists
// for humans and for the vocabulary check at the authority boundary.
type Permission string

const (
	PermCreateUser Permission = "create_user"
	PermReadUser   Permission = "read_user"
	PermUpdateUser Permission = "update_user"
	PermDeleteUser Permission = "delete_user"

	PermCreateSale Permission = "create_sale"
	PermReadSale   Permission = "read_sale"
	PermUpdateSale Permission = "update_sale"
	PermDeleteSale Permission = "delete_sale"

	PermCreateProduct Permission = "create_product"
	PermReadProduct   Permission = "read_product"
	PermUpdateProduct Permission = "update_product"
	PermDeleteProduct Permission = "delete_product"

	PermCreateInvoice Permission = "create_invoice"
	PermReadInvoice   Permission = "read_invoice"
	PermUpdateInvoice Permission = "update_invoice"
	PermDeleteInvoice Permission = "delete_invoice"

	PermCreateBranch Permission = "create_branch"
	PermReadBranch   Permission = "read_branch"
	PermUpdateBranch Permission = "update_branch"
	PermDeleteBranch Permission = "delete_branch"

	PermViewReports   Permission = "view_reports"
	PermExportReports Permission = "export_reports"
	PermSystemConfig  Permission = "system_config"
	PermViewLogs      Permission = "view_logs"
)

// AllPermissions returns the full closed vocabulary
func AllPermissions() []Permission {
	return []Permission{
		PermCreateUser, PermReadUser, PermUpdateUser, PermDeleteUser,
		PermCreateSale, PermReadSale, PermUpdateSale, PermDeleteSale,
		PermCreateProduct, PermReadProduct, PermUpdateProduct, PermDeleteProduct,
		PermCreateInvoice, PermReadInvoice, PermUpdateInvoice, PermDeleteInvoice,
		PermCreateBranch, PermReadBranch, PermUpdateBranch, PermDeleteBranch,
		PermViewReports, PermExportReports, PermSystemConfig, PermViewLogs,
	}
}

var knownPermissions = func() map[Permission]struct{} {
	m := make(map[Permission]struct{})
	for _, p := range AllPermissions() {
		m[p] = struct{}{}
	}
	return m
}()

// Known reports whether p belongs to the vocabulary
func Known(p Permission) bool {
	_, ok := knownPermissions[p]
	return ok
}

// Set is an unordered collection of permissions
type Set map[Permission]struct{}

// NewSet builds a set from the given permissions
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// SetFromStrings builds a set from raw permission strings, dropping any that
// are outside the vocabulary. The dropped strings are returned so the caller
// can log them.
func SetFromStrings(raw []string) (Set, []string) {
	s := make(Set, len(raw))
	var unknown []string
	for _, r := range raw {
		p := Permission(r)
		if !Known(p) {
			unknown = append(unknown, r)
			continue
		}
		s[p] = struct{}{}
	}
	return s, unknown
}

// Has reports membership
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Clone returns an independent copy of the set
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// Mode controls how a multi-permission check combines individual outcomes
type Mode string

const (
	// ModeAny grants when at least one requested permission is held
	ModeAny Mode = "any"
	// ModeAll grants only when every requested permission is held
	ModeAll Mode = "all"
)

// Source records which authority produced a decision
type Source string

const (
	// SourceNone marks decisions that needed no authority: unauthenticated
	// denials, empty request sets, unknown permissions.
	SourceNone Source = "none"
	// SourceEffective means the session's effective permission set answered
	SourceEffective Source = "effective"
	// SourceRemote means the authority's check-permission endpoint answered
	SourceRemote Source = "remote"
	// SourceCache means a previously cached decision answered
	SourceCache Source = "cache"
	// SourceFallback means the local policy table answered because the
	// authority was unreachable: the session is in degraded mode.
	SourceFallback Source = "fallback"
)

// Outcome is the result of resolving a single permission
type Outcome struct {
	Allowed bool   `json:"allowed"`
	Source  Source `json:"source"`
}

// Decision is the combined result of a resolve call
type Decision struct {
	Allowed bool `json:"allowed"`
	Mode    Mode `json:"mode"`
	// Source is the dominant source across the individual outcomes: fallback
	// if any outcome was degraded, otherwise remote, effective, cache, none.
	Source        Source                 `json:"source"`
	PerPermission map[Permission]Outcome `json:"per_permission,omitempty"`
}

// Degraded reports whether any part of the decision came from the local
// policy table rather than the authority
func (d Decision) Degraded() bool {
	return d.Source == SourceFallback
}
