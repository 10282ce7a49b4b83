package repository

import (
	"context"

	"program-access/internal/program/domain"
)

// Repository defines read access to program records.
type Repository interface {
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Record, error)
}
