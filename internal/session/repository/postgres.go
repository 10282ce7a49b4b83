package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"program-access/internal/db"
	"program-access/internal/session/domain"
)

const getSession = `SELECT id, user_id, expires_at, revoked_at, created_at FROM sessions WHERE id = $1`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a session repository that reads through the given pool or transaction.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRow(ctx, getSession, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
