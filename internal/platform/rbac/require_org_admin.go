package rbac

import (
	"context"
	"errors"
	"fmt"

	"program-access/internal/membership/domain"
)

var (
	// ErrIdentityRequired is returned when the user or organization id is empty.
	ErrIdentityRequired = errors.New("org and user identity required")
	// ErrNotMember is returned when the user has no active membership in the organization.
	ErrNotMember = errors.New("not a member of this organization")
	// ErrInsufficientRole is returned when the membership role is not privileged.
	ErrInsufficientRole = errors.New("organization admin or owner required")
)

// OrgMembershipGetter returns a user's active membership in an org, or nil if none.
type OrgMembershipGetter interface {
	GetActiveMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
}

// RequireOrgAdmin ensures userID holds an active owner or admin membership in orgID, as decided by authz.
// Returns the membership on success. ErrNotMember and ErrInsufficientRole mean access is denied;
// any other error is a lookup or policy failure.
func RequireOrgAdmin(ctx context.Context, authz Authorizer, getter OrgMembershipGetter, userID, orgID string) (*domain.Membership, error) {
	if userID == "" || orgID == "" {
		return nil, ErrIdentityRequired
	}
	m, err := getter.GetActiveMembershipByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("resolve membership: %w", err)
	}
	if m == nil || !m.IsActive {
		return nil, ErrNotMember
	}
	ok, err := authz.Allow(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("authorize membership: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientRole
	}
	return m, nil
}
