package authz

import (
	"errors"

	"github.com/google/uuid"
)

// Role values. Exactly two levels; there is no resource-level ACL and no
// delegation beyond the admin override.
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

// ErrRoleChangeForbidden is returned when a non-admin submits a role change.
// The whole mutation carrying the change must be rejected, not partially
// applied, so callers can surface it distinctly from ordinary validation
// failures and flag it in the audit trail.
var ErrRoleChangeForbidden = errors.New("only administrators can change user roles")

// Principal is the acting user as seen by the gate. It is passed explicitly
// into every check; nothing here reads session or request state.
type Principal struct {
	ID        uuid.UUID
	Role      string
	Superuser bool
	Active    bool
}

// IsAdmin reports whether the principal holds the admin role. The superuser
// flag is a bootstrap escape hatch, not part of the role enum.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Superuser
}

// CanAct reports whether the principal may mutate a resource owned by
// ownerID. Admins bypass ownership entirely; everyone else must own the
// resource. This is the single predicate used by every mutating entry point,
// for user profiles and certificates alike.
func CanAct(p Principal, ownerID uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	return p.ID == ownerID
}

// CanAssignRole reports whether the principal may set a role value on any
// user, themselves included.
func CanAssignRole(p Principal) bool {
	return p.IsAdmin()
}

// ValidRole reports whether r is one of the known role values.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleEmployee
}
