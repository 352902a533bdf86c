package service

import (
	"context"

	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
)

// TakesService defines the take ledger operations exposed to handlers and to
// the settlement collaborator.
type TakesService interface {
	// SetTakeFor records a new nominal take for member, vetting both parties
	// and enforcing the ownership rules. Returns the amount set.
	SetTakeFor(ctx context.Context, team *domain.Team, member, recorder *domain.Participant, amount decimal.Decimal) (decimal.Decimal, error)

	// GetTakeFor returns member's current nominal take, zero if they have
	// never taken from the team.
	GetTakeFor(ctx context.Context, team *domain.Team, member *domain.Participant) (decimal.Decimal, error)

	// GetTakeLastWeekFor returns the nominal take in effect when the most
	// recently closed settlement run ended, ignoring any run in progress.
	GetTakeLastWeekFor(ctx context.Context, team *domain.Team, member *domain.Participant) (decimal.Decimal, error)

	// ComputeActualTakes converts the team's nominal takes into the actual
	// distribution table bounded by the team's available funds.
	ComputeActualTakes(ctx context.Context, team *domain.Team) ([]domain.ActualTake, error)

	// UpdateTaking recomputes member.taking from confirmed actual amounts
	// keyed by team ID. oldAmounts is the previously confirmed state, kept
	// for audit logging.
	UpdateTaking(ctx context.Context, oldAmounts, newAmounts map[int64]decimal.Decimal, member *domain.Participant) error

	// UpdateDistributing folds confirmed actual amounts keyed by member ID
	// into the team's payroll and counters.
	UpdateDistributing(ctx context.Context, team *domain.Team, amounts map[int64]decimal.Decimal) error

	// ClearTakes zeroes the participant's take on every team where they
	// currently take, as owner or as member.
	ClearTakes(ctx context.Context, participant *domain.Participant) error

	// ReconcileCounters rebuilds the team's denormalized counters from the
	// payroll table.
	ReconcileCounters(ctx context.Context, team *domain.Team) error
}

// Services aggregates all service interfaces
type Services struct {
	Takes TakesService
}
