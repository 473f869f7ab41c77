package auth

import (
	"errors"
	"time"
)

// ErrMalformedCredential is returned when a token cannot be decoded.
// It is treated identically to an authentication failure: fail closed.
var ErrMalformedCredential = errors.New("malformed credential")

// Role names a coarse grant bundle assigned by the user service
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleViewer  Role = "viewer"
	// RoleUser is assigned to development tokens whose username is not in the
	// well-known table. It carries no permissions.
	RoleUser Role = "user"
)

// KnownRoles returns the closed set of roles the policy table covers
func KnownRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCashier, RoleViewer}
}

// KnownRole reports whether r is one of the closed role set
func KnownRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleViewer:
		return true
	}
	return false
}

// Identity is the authenticated principal derived from a credential
type Identity struct {
	Subject   string    `json:"subject"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the identity's credential has passed its expiry.
// Identities without an expiry (development tokens, tokens without an exp
// claim) never expire.
func (i Identity) Expired(now time.Time) bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(i.ExpiresAt)
}

// Credential pairs an opaque bearer token with its decoded identity
type Credential struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}
