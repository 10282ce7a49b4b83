package repository

import (
	"context"

	"program-access/internal/organization/domain"
)

// Repository defines read access to organizations.
type Repository interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Org, error)
}
