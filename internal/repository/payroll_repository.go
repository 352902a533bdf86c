package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
	"poolpay/pkg/database"
)

type PayrollPostgresRepository struct {
	db *database.PostgresDB
}

func NewPayrollRepository(db *database.PostgresDB) *PayrollPostgresRepository {
	return &PayrollPostgresRepository{db: db}
}

var _ PayrollRepository = (*PayrollPostgresRepository)(nil)

// ApplyDistribution merges confirmed per-member amounts into the team's
// payroll rows and refreshes distributing / ndistributing_to, all under the
// team row lock so concurrent read-modify-writes cannot interleave.
func (r *PayrollPostgresRepository) ApplyDistribution(ctx context.Context, teamID int64, amounts map[int64]decimal.Decimal) (*domain.DistributionTotals, error) {
	var totals domain.DistributionTotals
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var ndistributingTo int
		err := tx.QueryRow(ctx,
			`SELECT ndistributing_to FROM teams WHERE id = $1 FOR UPDATE`, teamID,
		).Scan(&ndistributingTo)
		if err != nil {
			return fmt.Errorf("failed to lock team %d: %w", teamID, err)
		}

		stored, err := payrollForTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}

		merged, t := domain.MergeDistribution(stored, ndistributingTo, amounts)
		for memberID := range amounts {
			_, err := tx.Exec(ctx, `
				INSERT INTO payroll (team_id, member_id, actual_amount, mtime)
				VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
				ON CONFLICT (team_id, member_id)
				DO UPDATE SET actual_amount = EXCLUDED.actual_amount, mtime = EXCLUDED.mtime
			`, teamID, memberID, merged[memberID])
			if err != nil {
				return fmt.Errorf("failed to upsert payroll row: %w", err)
			}
		}

		_, err = tx.Exec(ctx,
			`UPDATE teams SET distributing = $2, ndistributing_to = $3 WHERE id = $1`,
			teamID, t.Distributing, t.NDistributingTo,
		)
		if err != nil {
			return fmt.Errorf("failed to update team counters: %w", err)
		}
		totals = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// ApplyTaking recomputes the member's taking from payroll rows, with amounts
// overriding the stored figure for the teams they name.
func (r *PayrollPostgresRepository) ApplyTaking(ctx context.Context, memberID int64, amounts map[int64]decimal.Decimal) (decimal.Decimal, error) {
	var taking decimal.Decimal
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM participants WHERE id = $1 FOR UPDATE`, memberID,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to lock participant %d: %w", memberID, err)
		}

		stored := make(map[int64]decimal.Decimal)
		rows, err := tx.Query(ctx,
			`SELECT team_id, actual_amount FROM payroll WHERE member_id = $1`, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to get payroll rows: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var teamID int64
			var amount decimal.Decimal
			if err := rows.Scan(&teamID, &amount); err != nil {
				return fmt.Errorf("failed to scan payroll row: %w", err)
			}
			stored[teamID] = amount
		}
		if err := rows.Err(); err != nil {
			return err
		}

		taking = domain.MergeTaking(stored, amounts)
		if _, err := tx.Exec(ctx,
			`UPDATE participants SET taking = $2 WHERE id = $1`, memberID, taking,
		); err != nil {
			return fmt.Errorf("failed to update taking: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return taking, nil
}

// ReconcileTeam recomputes the team's counters straight from the payroll
// table, the safety net against denormalized-counter drift.
func (r *PayrollPostgresRepository) ReconcileTeam(ctx context.Context, teamID int64) (*domain.DistributionTotals, error) {
	var totals domain.DistributionTotals
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx,
			`SELECT id FROM teams WHERE id = $1 FOR UPDATE`, teamID,
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to lock team %d: %w", teamID, err)
		}

		err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(actual_amount), 0),
			       COUNT(*) FILTER (WHERE actual_amount <> 0)
			FROM payroll WHERE team_id = $1
		`, teamID).Scan(&totals.Distributing, &totals.NDistributingTo)
		if err != nil {
			return fmt.Errorf("failed to recompute counters: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE teams SET distributing = $2, ndistributing_to = $3 WHERE id = $1`,
			teamID, totals.Distributing, totals.NDistributingTo,
		)
		if err != nil {
			return fmt.Errorf("failed to update team counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func payrollForTeam(ctx context.Context, tx pgx.Tx, teamID int64) (map[int64]decimal.Decimal, error) {
	stored := make(map[int64]decimal.Decimal)
	rows, err := tx.Query(ctx,
		`SELECT member_id, actual_amount FROM payroll WHERE team_id = $1`, teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll rows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var memberID int64
		var amount decimal.Decimal
		if err := rows.Scan(&memberID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan payroll row: %w", err)
		}
		stored[memberID] = amount
	}
	return stored, rows.Err()
}
