package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolpay/internal/domain"
	"poolpay/internal/repository"
	"poolpay/pkg/logger"
)

type stubPaydayRepo struct {
	open    bool
	lastEnd *time.Time
}

func (r *stubPaydayRepo) IsRunOpen(ctx context.Context) (bool, error) {
	return r.open, nil
}

func (r *stubPaydayRepo) LastClosedRunEnd(ctx context.Context) (*time.Time, error) {
	return r.lastEnd, nil
}

func newSettlementRouter(svc *stubTakesService, paydays *stubPaydayRepo) http.Handler {
	repos := &repository.Repositories{
		Teams: &stubTeamRepo{teams: map[string]*domain.Team{
			"TheEnterprise": {ID: 10, Slug: "TheEnterprise", OwnerID: 1, Available: decimal.New(1, 0)},
		}},
		Participants: &stubParticipantRepo{participants: map[string]*domain.Participant{
			"crusher": {ID: 2, Username: "crusher"},
			"bruiser": {ID: 3, Username: "bruiser"},
		}},
		Paydays: paydays,
	}
	h := NewSettlementHandler(svc, repos, logger.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestApplyDistributionUpdatesCounters(t *testing.T) {
	svc := &stubTakesService{}
	router := newSettlementRouter(svc, &stubPaydayRepo{open: true})

	rec, resp := doRequest(t, router, http.MethodPost, "/teams/TheEnterprise/distribution",
		`{"amounts":{"crusher":"0.70","bruiser":"0.30"}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	require.Len(t, svc.distributions, 1)
	assert.True(t, decimal.RequireFromString("0.70").Equal(svc.distributions[0][2]))
	assert.True(t, decimal.RequireFromString("0.30").Equal(svc.distributions[0][3]))
	assert.ElementsMatch(t, []string{"crusher", "bruiser"}, svc.takingUpdates)
}

func TestApplyDistributionRequiresOpenRun(t *testing.T) {
	svc := &stubTakesService{}
	router := newSettlementRouter(svc, &stubPaydayRepo{open: false})

	rec, resp := doRequest(t, router, http.MethodPost, "/teams/TheEnterprise/distribution",
		`{"amounts":{"crusher":"0.70"}}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no_open_run", resp.Error.Type)
	assert.Empty(t, svc.distributions)
}

func TestApplyDistributionUnknownMember(t *testing.T) {
	svc := &stubTakesService{}
	router := newSettlementRouter(svc, &stubPaydayRepo{open: true})

	rec, _ := doRequest(t, router, http.MethodPost, "/teams/TheEnterprise/distribution",
		`{"amounts":{"mallory":"0.70"}}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, svc.distributions)
}

func TestReconcileEndpoint(t *testing.T) {
	svc := &stubTakesService{}
	router := newSettlementRouter(svc, &stubPaydayRepo{})

	rec, _ := doRequest(t, router, http.MethodPost, "/teams/TheEnterprise/reconcile", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TheEnterprise"}, svc.reconciled)
}

func TestPaydayStatus(t *testing.T) {
	end := time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)
	router := newSettlementRouter(&stubTakesService{}, &stubPaydayRepo{open: true, lastEnd: &end})

	rec, resp := doRequest(t, router, http.MethodGet, "/paydays/status", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["open"])
	assert.Equal(t, "2024-01-04T12:00:00Z", data["last_closed_run_end"])
}
