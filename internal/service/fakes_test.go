package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
	"poolpay/internal/repository"
)

// memStore backs the in-memory repository fakes. One store is shared by all
// of them so cross-repository effects (ledger writes feeding counters) are
// observable the way they would be in Postgres.
type memStore struct {
	now          time.Time
	nextTakeID   int64
	takes        []domain.Take
	teams        map[int64]domain.Team
	participants map[int64]domain.Participant
	payroll      map[int64]map[int64]decimal.Decimal // teamID -> memberID -> amount

	paydayOpen    bool
	lastClosedEnd *time.Time
}

func newMemStore() *memStore {
	return &memStore{
		now:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		teams:        make(map[int64]domain.Team),
		participants: make(map[int64]domain.Participant),
		payroll:      make(map[int64]map[int64]decimal.Decimal),
	}
}

// tick advances the store clock so every ledger entry gets a distinct mtime.
func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

// latestTake returns the most recent ledger entry for a pair, nil if none.
func (s *memStore) latestTake(teamID, memberID int64) *domain.Take {
	for i := len(s.takes) - 1; i >= 0; i-- {
		if s.takes[i].TeamID == teamID && s.takes[i].MemberID == memberID {
			return &s.takes[i]
		}
	}
	return nil
}

type memParticipantRepo struct{ s *memStore }

func (r *memParticipantRepo) GetByID(ctx context.Context, id int64) (*domain.Participant, error) {
	if p, ok := r.s.participants[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *memParticipantRepo) GetByUsername(ctx context.Context, username string) (*domain.Participant, error) {
	for _, p := range r.s.participants {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, nil
}

type memTeamRepo struct{ s *memStore }

func (r *memTeamRepo) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	if t, ok := r.s.teams[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r *memTeamRepo) GetBySlug(ctx context.Context, slug string) (*domain.Team, error) {
	for _, t := range r.s.teams {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, nil
}

type memTakeRepo struct{ s *memStore }

func (r *memTakeRepo) Append(ctx context.Context, take *domain.Take) error {
	r.s.nextTakeID++
	take.ID = r.s.nextTakeID
	take.Mtime = r.s.tick()
	if first := r.s.latestTake(take.TeamID, take.MemberID); first != nil {
		take.Ctime = first.Ctime
	} else {
		take.Ctime = take.Mtime
	}
	r.s.takes = append(r.s.takes, *take)
	return nil
}

func (r *memTakeRepo) CurrentTake(ctx context.Context, teamID, memberID int64) (decimal.Decimal, error) {
	if latest := r.s.latestTake(teamID, memberID); latest != nil {
		return latest.NominalAmount, nil
	}
	return decimal.Zero, nil
}

func (r *memTakeRepo) HasEverTaken(ctx context.Context, teamID, memberID int64) (bool, error) {
	return r.s.latestTake(teamID, memberID) != nil, nil
}

func (r *memTakeRepo) CurrentTakes(ctx context.Context, teamID int64) ([]domain.Take, error) {
	seen := make(map[int64]bool)
	var takes []domain.Take
	for i := len(r.s.takes) - 1; i >= 0; i-- {
		t := r.s.takes[i]
		if t.TeamID != teamID || seen[t.MemberID] {
			continue
		}
		seen[t.MemberID] = true
		if !t.NominalAmount.IsZero() {
			takes = append(takes, t)
		}
	}
	return takes, nil
}

func (r *memTakeRepo) TakeAsOf(ctx context.Context, teamID, memberID int64, asOf time.Time) (decimal.Decimal, error) {
	for i := len(r.s.takes) - 1; i >= 0; i-- {
		t := r.s.takes[i]
		if t.TeamID == teamID && t.MemberID == memberID && !t.Mtime.After(asOf) {
			return t.NominalAmount, nil
		}
	}
	return decimal.Zero, nil
}

func (r *memTakeRepo) TeamsWithNonzeroTake(ctx context.Context, memberID int64) ([]int64, error) {
	seen := make(map[int64]bool)
	var teamIDs []int64
	for i := len(r.s.takes) - 1; i >= 0; i-- {
		t := r.s.takes[i]
		if t.MemberID != memberID || seen[t.TeamID] {
			continue
		}
		seen[t.TeamID] = true
		if !t.NominalAmount.IsZero() {
			teamIDs = append(teamIDs, t.TeamID)
		}
	}
	return teamIDs, nil
}

type memPayrollRepo struct{ s *memStore }

func (r *memPayrollRepo) ApplyDistribution(ctx context.Context, teamID int64, amounts map[int64]decimal.Decimal) (*domain.DistributionTotals, error) {
	team := r.s.teams[teamID]
	merged, totals := domain.MergeDistribution(r.s.payroll[teamID], team.NDistributingTo, amounts)
	r.s.payroll[teamID] = merged
	team.Distributing = totals.Distributing
	team.NDistributingTo = totals.NDistributingTo
	r.s.teams[teamID] = team
	return &totals, nil
}

func (r *memPayrollRepo) ApplyTaking(ctx context.Context, memberID int64, amounts map[int64]decimal.Decimal) (decimal.Decimal, error) {
	stored := make(map[int64]decimal.Decimal)
	for teamID, members := range r.s.payroll {
		if amount, ok := members[memberID]; ok {
			stored[teamID] = amount
		}
	}
	taking := domain.MergeTaking(stored, amounts)
	p := r.s.participants[memberID]
	p.Taking = taking
	r.s.participants[memberID] = p
	return taking, nil
}

func (r *memPayrollRepo) ReconcileTeam(ctx context.Context, teamID int64) (*domain.DistributionTotals, error) {
	totals := domain.DistributionTotals{Distributing: decimal.Zero}
	for _, amount := range r.s.payroll[teamID] {
		totals.Distributing = totals.Distributing.Add(amount)
		if !amount.IsZero() {
			totals.NDistributingTo++
		}
	}
	team := r.s.teams[teamID]
	team.Distributing = totals.Distributing
	team.NDistributingTo = totals.NDistributingTo
	r.s.teams[teamID] = team
	return &totals, nil
}

type memPaydayRepo struct{ s *memStore }

func (r *memPaydayRepo) IsRunOpen(ctx context.Context) (bool, error) {
	return r.s.paydayOpen, nil
}

func (r *memPaydayRepo) LastClosedRunEnd(ctx context.Context) (*time.Time, error) {
	return r.s.lastClosedEnd, nil
}

func memRepositories(s *memStore) *repository.Repositories {
	return &repository.Repositories{
		Participants: &memParticipantRepo{s},
		Teams:        &memTeamRepo{s},
		Takes:        &memTakeRepo{s},
		Payroll:      &memPayrollRepo{s},
		Paydays:      &memPaydayRepo{s},
	}
}
