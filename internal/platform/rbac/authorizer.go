package rbac

import (
	"context"

	"program-access/internal/membership/domain"
)

// PrivilegedRoles are the membership roles allowed to read organization-wide program data.
var PrivilegedRoles = []domain.Role{domain.RoleOwner, domain.RoleAdmin}

// Authorizer decides whether a membership grants access to organization-wide program data.
type Authorizer interface {
	Allow(ctx context.Context, m *domain.Membership) (bool, error)
}

// IsPrivileged reports whether role is in PrivilegedRoles. The comparison is exact.
func IsPrivileged(role domain.Role) bool {
	for _, r := range PrivilegedRoles {
		if role == r {
			return true
		}
	}
	return false
}

// StaticAuthorizer allows active memberships whose role is in PrivilegedRoles.
type StaticAuthorizer struct{}

// Allow implements Authorizer.
func (StaticAuthorizer) Allow(_ context.Context, m *domain.Membership) (bool, error) {
	return m != nil && m.IsActive && IsPrivileged(m.Role), nil
}
