package repository

import (
	"context"

	"program-access/internal/session/domain"
)

// Repository defines read access to sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
}
