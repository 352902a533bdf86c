package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
	"poolpay/pkg/database"
)

type TakePostgresRepository struct {
	db *database.PostgresDB
}

func NewTakeRepository(db *database.PostgresDB) *TakePostgresRepository {
	return &TakePostgresRepository{db: db}
}

var _ TakeRepository = (*TakePostgresRepository)(nil)

// Append writes one take ledger entry. The team row is locked first so that
// concurrent appends for the same (team, member) pair serialize and the
// latest-mtime-per-pair lookup stays well-defined. Ctime carries over from
// the pair's first entry.
func (r *TakePostgresRepository) Append(ctx context.Context, take *domain.Take) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var teamID int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM teams WHERE id = $1 FOR UPDATE`, take.TeamID,
		).Scan(&teamID)
		if err != nil {
			return fmt.Errorf("failed to lock team %d: %w", take.TeamID, err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO takes (team_id, member_id, recorder_id, nominal_amount, ctime, mtime)
			VALUES ($1, $2, $3, $4,
			        COALESCE((SELECT ctime FROM takes
			                  WHERE team_id = $1 AND member_id = $2
			                  ORDER BY mtime ASC, id ASC LIMIT 1),
			                 CURRENT_TIMESTAMP),
			        CURRENT_TIMESTAMP)
			RETURNING id, ctime, mtime
		`, take.TeamID, take.MemberID, take.RecorderID, take.NominalAmount,
		).Scan(&take.ID, &take.Ctime, &take.Mtime)
		if err != nil {
			return fmt.Errorf("failed to append take: %w", err)
		}
		return nil
	})
}

// CurrentTake gets the pair's current nominal take, zero for unknown members
func (r *TakePostgresRepository) CurrentTake(ctx context.Context, teamID, memberID int64) (decimal.Decimal, error) {
	var amount decimal.Decimal
	query := `
		SELECT nominal_amount FROM takes
		WHERE team_id = $1 AND member_id = $2
		ORDER BY mtime DESC, id DESC
		LIMIT 1
	`
	err := r.db.Pool.QueryRow(ctx, query, teamID, memberID).Scan(&amount)
	if err == pgx.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get current take: %w", err)
	}
	return amount, nil
}

// HasEverTaken reports whether the pair has any ledger entry at all
func (r *TakePostgresRepository) HasEverTaken(ctx context.Context, teamID, memberID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM takes WHERE team_id = $1 AND member_id = $2)`
	if err := r.db.Pool.QueryRow(ctx, query, teamID, memberID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// CurrentTakes gets the team's current nonzero takes, one row per member
func (r *TakePostgresRepository) CurrentTakes(ctx context.Context, teamID int64) ([]domain.Take, error) {
	query := `
		SELECT id, team_id, member_id, recorder_id, nominal_amount, ctime, mtime
		FROM current_takes
		WHERE team_id = $1
	`
	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current takes: %w", err)
	}
	defer rows.Close()

	var takes []domain.Take
	for rows.Next() {
		var t domain.Take
		err := rows.Scan(&t.ID, &t.TeamID, &t.MemberID, &t.RecorderID, &t.NominalAmount, &t.Ctime, &t.Mtime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan take: %w", err)
		}
		takes = append(takes, t)
	}
	return takes, rows.Err()
}

// TakeAsOf gets the pair's nominal take in effect at the given instant
func (r *TakePostgresRepository) TakeAsOf(ctx context.Context, teamID, memberID int64, asOf time.Time) (decimal.Decimal, error) {
	var amount decimal.Decimal
	query := `
		SELECT nominal_amount FROM takes
		WHERE team_id = $1 AND member_id = $2 AND mtime <= $3
		ORDER BY mtime DESC, id DESC
		LIMIT 1
	`
	err := r.db.Pool.QueryRow(ctx, query, teamID, memberID, asOf).Scan(&amount)
	if err == pgx.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get take as of %s: %w", asOf, err)
	}
	return amount, nil
}

// TeamsWithNonzeroTake gets the IDs of teams where the member currently takes
func (r *TakePostgresRepository) TeamsWithNonzeroTake(ctx context.Context, memberID int64) ([]int64, error) {
	query := `SELECT team_id FROM current_takes WHERE member_id = $1`
	rows, err := r.db.Pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get taking teams: %w", err)
	}
	defer rows.Close()

	var teamIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		teamIDs = append(teamIDs, id)
	}
	return teamIDs, rows.Err()
}
