package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"poolpay/pkg/database"
)

type PaydayPostgresRepository struct {
	db *database.PostgresDB
}

func NewPaydayRepository(db *database.PostgresDB) *PaydayPostgresRepository {
	return &PaydayPostgresRepository{db: db}
}

var _ PaydayRepository = (*PaydayPostgresRepository)(nil)

// IsRunOpen reports whether a settlement run is currently in progress
func (r *PaydayPostgresRepository) IsRunOpen(ctx context.Context) (bool, error) {
	var open bool
	query := `SELECT EXISTS (SELECT 1 FROM paydays WHERE ts_end IS NULL)`
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&open); err != nil {
		return false, fmt.Errorf("failed to check for open payday: %w", err)
	}
	return open, nil
}

// LastClosedRunEnd returns when the most recent closed run ended. Open runs
// have no ts_end yet, so they never shift the boundary.
func (r *PaydayPostgresRepository) LastClosedRunEnd(ctx context.Context) (*time.Time, error) {
	var end time.Time
	query := `
		SELECT ts_end FROM paydays
		WHERE ts_end IS NOT NULL
		ORDER BY ts_end DESC
		LIMIT 1
	`
	err := r.db.Pool.QueryRow(ctx, query).Scan(&end)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last closed payday: %w", err)
	}
	return &end, nil
}
