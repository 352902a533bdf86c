package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
	"poolpay/internal/repository"
	"poolpay/pkg/logger"
)

// takesService implements TakesService over the take ledger, the payroll
// counters and the payday boundary.
type takesService struct {
	takes           repository.TakeRepository
	teams           repository.TeamRepository
	payroll         repository.PayrollRepository
	paydays         repository.PaydayRepository
	cache           *TakesCache
	log             *logger.Logger
	blockUnreviewed bool
}

// NewTakesService creates a new takes service. blockUnreviewed controls
// whether never-reviewed accounts are blocked from take changes.
func NewTakesService(repos *repository.Repositories, cache *TakesCache, log *logger.Logger, blockUnreviewed bool) TakesService {
	return &takesService{
		takes:           repos.Takes,
		teams:           repos.Teams,
		payroll:         repos.Payroll,
		paydays:         repos.Paydays,
		cache:           cache,
		log:             log,
		blockUnreviewed: blockUnreviewed,
	}
}

// SetTakeFor vets both parties, enforces the ownership rules, appends the
// ledger entry and updates the denormalized counters with the nominal amount
// (optimistic bookkeeping until the next settlement run confirms actuals).
func (s *takesService) SetTakeFor(ctx context.Context, team *domain.Team, member, recorder *domain.Participant, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if err := vetParticipant(member, s.blockUnreviewed); err != nil {
		return decimal.Zero, err
	}
	if err := vetParticipant(recorder, s.blockUnreviewed); err != nil {
		return decimal.Zero, err
	}
	if err := s.checkOwnership(ctx, team, member, recorder, amount); err != nil {
		return decimal.Zero, err
	}

	take := &domain.Take{
		TeamID:        team.ID,
		MemberID:      member.ID,
		RecorderID:    recorder.ID,
		NominalAmount: amount,
	}
	if err := s.takes.Append(ctx, take); err != nil {
		return decimal.Zero, err
	}

	if err := s.UpdateDistributing(ctx, team, map[int64]decimal.Decimal{member.ID: amount}); err != nil {
		return decimal.Zero, err
	}
	if err := s.UpdateTaking(ctx, nil, map[int64]decimal.Decimal{team.ID: amount}, member); err != nil {
		return decimal.Zero, err
	}

	s.log.WithFields(map[string]interface{}{
		"team":     team.Slug,
		"member":   member.Username,
		"recorder": recorder.Username,
		"amount":   amount.String(),
	}).Info("Take recorded")

	return amount, nil
}

// checkOwnership applies the self/owner decision table: members may set
// their own take once the owner has added them, the owner may set their own
// take freely, and on anyone else the owner may only add at exactly one
// penny or remove an existing member at exactly zero. A zero write for a
// pair with no ledger record would itself create membership, so it is
// rejected rather than treated as a no-op removal.
func (s *takesService) checkOwnership(ctx context.Context, team *domain.Team, member, recorder *domain.Participant, amount decimal.Decimal) error {
	if recorder.ID != member.ID {
		if recorder.ID != team.OwnerID {
			return domain.NotAllowed(domain.ReasonNotSelf)
		}
		current, err := s.takes.CurrentTake(ctx, team.ID, member.ID)
		if err != nil {
			return err
		}
		if current.IsZero() {
			if amount.IsZero() {
				onTeam, err := s.takes.HasEverTaken(ctx, team.ID, member.ID)
				if err != nil {
					return err
				}
				if !onTeam {
					return domain.NotAllowed(domain.ReasonOwnerLimited)
				}
			} else if !amount.Equal(domain.Penny) {
				return domain.NotAllowed(domain.ReasonOwnerLimited)
			}
		} else if !amount.IsZero() {
			return domain.NotAllowed(domain.ReasonOwnerLimited)
		}
		return nil
	}
	if member.ID == team.OwnerID {
		return nil
	}
	onTeam, err := s.takes.HasEverTaken(ctx, team.ID, member.ID)
	if err != nil {
		return err
	}
	if !onTeam {
		return domain.NotAllowed(domain.ReasonNotMember)
	}
	return nil
}

// GetTakeFor gets member's current nominal take for the team
func (s *takesService) GetTakeFor(ctx context.Context, team *domain.Team, member *domain.Participant) (decimal.Decimal, error) {
	return s.takes.CurrentTake(ctx, team.ID, member.ID)
}

// GetTakeLastWeekFor gets the nominal take frozen at the last closed
// settlement run's end. A run in progress has no end yet and cannot move
// the boundary.
func (s *takesService) GetTakeLastWeekFor(ctx context.Context, team *domain.Team, member *domain.Participant) (decimal.Decimal, error) {
	boundary, err := s.paydays.LastClosedRunEnd(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if boundary == nil {
		return decimal.Zero, nil
	}
	return s.takes.TakeAsOf(ctx, team.ID, member.ID, *boundary)
}

// ComputeActualTakes computes the actual distribution table for the team's
// available funds, reading through the cache when one is configured.
func (s *takesService) ComputeActualTakes(ctx context.Context, team *domain.Team) ([]domain.ActualTake, error) {
	if rows, ok := s.cache.GetTable(ctx, team.Slug); ok {
		return rows, nil
	}
	takes, err := s.takes.CurrentTakes(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	rows := allocateTakes(takes, team.Available)
	s.cache.SetTable(ctx, team.Slug, rows)
	return rows, nil
}

// UpdateTaking recomputes member.taking from confirmed actual amounts.
func (s *takesService) UpdateTaking(ctx context.Context, oldAmounts, newAmounts map[int64]decimal.Decimal, member *domain.Participant) error {
	taking, err := s.payroll.ApplyTaking(ctx, member.ID, newAmounts)
	if err != nil {
		return fmt.Errorf("failed to update taking for %s: %w", member.Username, err)
	}
	s.log.WithFields(map[string]interface{}{
		"member": member.Username,
		"old":    sumAmounts(oldAmounts).String(),
		"new":    sumAmounts(newAmounts).String(),
		"taking": taking.String(),
	}).Debug("Taking updated")
	member.Taking = taking
	return nil
}

// UpdateDistributing folds confirmed actual amounts into the team's payroll
// and refreshes the distributing / ndistributing_to counters.
func (s *takesService) UpdateDistributing(ctx context.Context, team *domain.Team, amounts map[int64]decimal.Decimal) error {
	totals, err := s.payroll.ApplyDistribution(ctx, team.ID, amounts)
	if err != nil {
		return fmt.Errorf("failed to update distributing for %s: %w", team.Slug, err)
	}
	team.Distributing = totals.Distributing
	team.NDistributingTo = totals.NDistributingTo
	s.cache.Invalidate(ctx, team.Slug)
	return nil
}

// ClearTakes zeroes the participant's take everywhere they currently take.
// Teams they own but never took from need no entry, so the ledger stays
// untouched for those. Vetting is skipped: this runs when an account closes,
// when the usual eligibility checks no longer apply.
func (s *takesService) ClearTakes(ctx context.Context, participant *domain.Participant) error {
	teamIDs, err := s.takes.TeamsWithNonzeroTake(ctx, participant.ID)
	if err != nil {
		return err
	}
	for _, teamID := range teamIDs {
		team, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}
		if team == nil {
			continue
		}
		take := &domain.Take{
			TeamID:        team.ID,
			MemberID:      participant.ID,
			RecorderID:    participant.ID,
			NominalAmount: decimal.Zero,
		}
		if err := s.takes.Append(ctx, take); err != nil {
			return err
		}
		if err := s.UpdateDistributing(ctx, team, map[int64]decimal.Decimal{participant.ID: decimal.Zero}); err != nil {
			return err
		}
		if err := s.UpdateTaking(ctx, nil, map[int64]decimal.Decimal{team.ID: decimal.Zero}, participant); err != nil {
			return err
		}
	}
	if len(teamIDs) > 0 {
		s.log.WithFields(map[string]interface{}{
			"participant": participant.Username,
			"teams":       len(teamIDs),
		}).Info("Takes cleared")
	}
	return nil
}

// ReconcileCounters rebuilds the team's counters from the payroll table.
func (s *takesService) ReconcileCounters(ctx context.Context, team *domain.Team) error {
	totals, err := s.payroll.ReconcileTeam(ctx, team.ID)
	if err != nil {
		return fmt.Errorf("failed to reconcile counters for %s: %w", team.Slug, err)
	}
	team.Distributing = totals.Distributing
	team.NDistributingTo = totals.NDistributingTo
	s.cache.Invalidate(ctx, team.Slug)
	return nil
}

func sumAmounts(amounts map[int64]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}
