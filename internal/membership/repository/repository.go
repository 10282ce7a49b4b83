package repository

import (
	"context"

	"program-access/internal/membership/domain"
)

// Repository defines read access to organization memberships.
type Repository interface {
	GetActiveMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
}
