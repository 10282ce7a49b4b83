package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"program-access/internal/db"
	"program-access/internal/program/domain"
)

const listProgramsByOrganization = `SELECT * FROM programs WHERE organization_id = $1`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a program repository that reads through the given pool or transaction.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// ListByOrganization returns every column of every program whose organization_id is orgID.
// The result is never nil; an organization without programs yields an empty slice.
func (r *PostgresRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Record, error) {
	rows, err := r.db.Query(ctx, listProgramsByOrganization, orgID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Record, error) {
		m, err := pgx.RowToMap(row)
		return domain.Record(m), err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Record{}
	}
	return out, nil
}
