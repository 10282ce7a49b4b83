package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"program-access/internal/db"
	"program-access/internal/membership/domain"
)

// No ORDER BY: the partial unique index allows at most one active row per (org, user).
const getActiveMembershipByUserAndOrg = `
SELECT id, user_id, organization_id, role, is_active, created_at
FROM organization_members
WHERE organization_id = $1 AND user_id = $2 AND is_active = TRUE
LIMIT 1`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a membership repository that reads through the given pool or transaction.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetActiveMembershipByUserAndOrg returns the active membership for the given user and org, or nil if none.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	var m domain.Membership
	var role string
	err := r.db.QueryRow(ctx, getActiveMembershipByUserAndOrg, orgID, userID).
		Scan(&m.ID, &m.UserID, &m.OrgID, &role, &m.IsActive, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Role = domain.Role(role)
	return &m, nil
}
