package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"program-access/internal/db"
	"program-access/internal/organization/domain"
)

const getOrganizationBySlug = `SELECT id, slug, name, status, created_at FROM organizations WHERE slug = $1`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an organization repository that reads through the given pool or transaction.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetOrganizationBySlug returns the organization with the given slug, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Org, error) {
	var o domain.Org
	var status string
	err := r.db.QueryRow(ctx, getOrganizationBySlug, slug).Scan(&o.ID, &o.Slug, &o.Name, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.OrgStatus(status)
	return &o, nil
}
