package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
)

// ParticipantRepository defines read access to participants plus the one
// denormalized column this core owns (taking).
type ParticipantRepository interface {
	// GetByID retrieves a participant by ID, nil if unknown
	GetByID(ctx context.Context, id int64) (*domain.Participant, error)

	// GetByUsername retrieves a participant by username, nil if unknown
	GetByUsername(ctx context.Context, username string) (*domain.Participant, error)
}

// TeamRepository defines read access to teams.
type TeamRepository interface {
	// GetByID retrieves a team by ID, nil if unknown
	GetByID(ctx context.Context, id int64) (*domain.Team, error)

	// GetBySlug retrieves a team by slug, nil if unknown
	GetBySlug(ctx context.Context, slug string) (*domain.Team, error)
}

// TakeRepository is the append-only take ledger. Appends for the same team
// serialize on the team row so that "most recent record wins" is
// well-defined under concurrent writers.
type TakeRepository interface {
	// Append writes one ledger entry. It fixes Ctime to the pair's first
	// entry (or this entry's own Mtime for a brand-new membership) and
	// fills ID, Ctime and Mtime on the passed record.
	Append(ctx context.Context, take *domain.Take) error

	// CurrentTake returns the pair's current nominal take, zero if the
	// member has no ledger entry for the team.
	CurrentTake(ctx context.Context, teamID, memberID int64) (decimal.Decimal, error)

	// HasEverTaken reports whether the pair has any ledger entry at all,
	// i.e. whether the member was ever on the team.
	HasEverTaken(ctx context.Context, teamID, memberID int64) (bool, error)

	// CurrentTakes returns the team's current nonzero takes, one latest
	// entry per member, in no particular order.
	CurrentTakes(ctx context.Context, teamID int64) ([]domain.Take, error)

	// TakeAsOf returns the pair's nominal take as of the given instant,
	// zero if the member had no entry by then.
	TakeAsOf(ctx context.Context, teamID, memberID int64, asOf time.Time) (decimal.Decimal, error)

	// TeamsWithNonzeroTake returns the IDs of every team where the member's
	// current nominal take is nonzero.
	TeamsWithNonzeroTake(ctx context.Context, memberID int64) ([]int64, error)
}

// PayrollRepository stores the most recent confirmed actual payout per
// (team, member) pair and maintains the denormalized counters derived from
// it. Each call is one atomic read-modify-write.
type PayrollRepository interface {
	// ApplyDistribution merges per-member amounts into the team's payroll
	// and updates teams.distributing / teams.ndistributing_to in the same
	// transaction. Idempotent for unchanged amounts.
	ApplyDistribution(ctx context.Context, teamID int64, amounts map[int64]decimal.Decimal) (*domain.DistributionTotals, error)

	// ApplyTaking recomputes participants.taking for one member from the
	// member's payroll rows, letting amounts (keyed by team ID) override the
	// stored figures. Returns the new taking.
	ApplyTaking(ctx context.Context, memberID int64, amounts map[int64]decimal.Decimal) (decimal.Decimal, error)

	// ReconcileTeam recomputes the team's counters from the payroll table,
	// repairing any drift.
	ReconcileTeam(ctx context.Context, teamID int64) (*domain.DistributionTotals, error)
}

// PaydayRepository is the read-only window onto the settlement collaborator.
type PaydayRepository interface {
	// IsRunOpen reports whether a settlement run is currently in progress
	IsRunOpen(ctx context.Context) (bool, error)

	// LastClosedRunEnd returns when the most recent closed run ended, nil
	// if no run has ever closed
	LastClosedRunEnd(ctx context.Context) (*time.Time, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Participants ParticipantRepository
	Teams        TeamRepository
	Takes        TakeRepository
	Payroll      PayrollRepository
	Paydays      PaydayRepository
}
