package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poolpay/internal/domain"
	"poolpay/pkg/database"
)

type TeamPostgresRepository struct {
	db *database.PostgresDB
}

func NewTeamRepository(db *database.PostgresDB) *TeamPostgresRepository {
	return &TeamPostgresRepository{db: db}
}

var _ TeamRepository = (*TeamPostgresRepository)(nil)

const teamColumns = `
	id, slug, name, owner_id, available, receiving,
	distributing, ndistributing_to, created_at
`

// GetByID gets a team by ID
func (r *TeamPostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

// GetBySlug gets a team by slug
func (r *TeamPostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE slug = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, slug))
}

func (r *TeamPostgresRepository) scanOne(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	err := row.Scan(
		&t.ID,
		&t.Slug,
		&t.Name,
		&t.OwnerID,
		&t.Available,
		&t.Receiving,
		&t.Distributing,
		&t.NDistributingTo,
		&t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}
