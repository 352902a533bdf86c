package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poolpay/internal/domain"
	"poolpay/pkg/database"
)

type ParticipantPostgresRepository struct {
	db *database.PostgresDB
}

func NewParticipantRepository(db *database.PostgresDB) *ParticipantPostgresRepository {
	return &ParticipantPostgresRepository{db: db}
}

var _ ParticipantRepository = (*ParticipantPostgresRepository)(nil)

const participantColumns = `
	p.id, p.username, p.claimed_time, p.is_suspicious, p.verified_in, p.taking,
	EXISTS (SELECT 1 FROM email_addresses e
	        WHERE e.participant_id = p.id AND e.verified) AS has_verified_email
`

// GetByID gets a participant by ID
func (r *ParticipantPostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants p WHERE p.id = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByUsername gets a participant by username
func (r *ParticipantPostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants p WHERE p.username = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, username))
}

func (r *ParticipantPostgresRepository) scanOne(row pgx.Row) (*domain.Participant, error) {
	var p domain.Participant
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.ClaimedTime,
		&p.IsSuspicious,
		&p.VerifiedIn,
		&p.Taking,
		&p.HasVerifiedEmail,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}
