package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
	"poolpay/internal/repository"
	"poolpay/internal/service"
	"poolpay/pkg/logger"
)

// SettlementHandler is the surface the settlement collaborator calls to feed
// confirmed actual payouts back into the counters.
type SettlementHandler struct {
	takes        service.TakesService
	teams        repository.TeamRepository
	participants repository.ParticipantRepository
	paydays      repository.PaydayRepository
	logger       *logger.Logger
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(takes service.TakesService, repos *repository.Repositories, log *logger.Logger) *SettlementHandler {
	return &SettlementHandler{
		takes:        takes,
		teams:        repos.Teams,
		participants: repos.Participants,
		paydays:      repos.Paydays,
		logger:       log,
	}
}

// DistributionRequest carries confirmed actual amounts keyed by username
type DistributionRequest struct {
	Amounts map[string]decimal.Decimal `json:"amounts"`
}

// PaydayStatusResponse reports the settlement run window
type PaydayStatusResponse struct {
	Open             bool    `json:"open"`
	LastClosedRunEnd *string `json:"last_closed_run_end,omitempty"`
}

// RegisterRoutes mounts the settlement endpoints
func (h *SettlementHandler) RegisterRoutes(r chi.Router) {
	r.Post("/teams/{slug}/distribution", h.ApplyDistribution)
	r.Post("/teams/{slug}/reconcile", h.Reconcile)
	r.Get("/paydays/status", h.PaydayStatus)
}

// ApplyDistribution handles POST /v1/teams/{slug}/distribution. Confirmed
// amounts update the team's counters and every named member's taking. Only
// accepted while a settlement run is open.
func (h *SettlementHandler) ApplyDistribution(w http.ResponseWriter, r *http.Request) {
	team := h.resolveTeam(w, r)
	if team == nil {
		return
	}

	open, err := h.paydays.IsRunOpen(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	if !open {
		sendError(w, http.StatusConflict, "no_open_run", "No settlement run is open")
		return
	}

	var req DistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	byID := make(map[int64]decimal.Decimal, len(req.Amounts))
	members := make(map[int64]string, len(req.Amounts))
	for username, amount := range req.Amounts {
		participant, err := h.participants.GetByUsername(r.Context(), username)
		if err != nil {
			sendServiceError(w, h.logger, err)
			return
		}
		if participant == nil {
			sendError(w, http.StatusNotFound, "not_found", "Participant not found: "+username)
			return
		}
		byID[participant.ID] = amount
		members[participant.ID] = username
	}

	if err := h.takes.UpdateDistributing(r.Context(), team, byID); err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	for memberID, amount := range byID {
		participant, err := h.participants.GetByID(r.Context(), memberID)
		if err != nil || participant == nil {
			h.logger.WithField("member", members[memberID]).Warn("Skipping taking update for missing participant")
			continue
		}
		update := map[int64]decimal.Decimal{team.ID: amount}
		if err := h.takes.UpdateTaking(r.Context(), nil, update, participant); err != nil {
			sendServiceError(w, h.logger, err)
			return
		}
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"team":             team.Slug,
		"distributing":     team.Distributing,
		"ndistributing_to": team.NDistributingTo,
	})
}

// Reconcile handles POST /v1/teams/{slug}/reconcile
func (h *SettlementHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	team := h.resolveTeam(w, r)
	if team == nil {
		return
	}
	if err := h.takes.ReconcileCounters(r.Context(), team); err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"team":             team.Slug,
		"distributing":     team.Distributing,
		"ndistributing_to": team.NDistributingTo,
	})
}

// PaydayStatus handles GET /v1/paydays/status
func (h *SettlementHandler) PaydayStatus(w http.ResponseWriter, r *http.Request) {
	open, err := h.paydays.IsRunOpen(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	end, err := h.paydays.LastClosedRunEnd(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	resp := PaydayStatusResponse{Open: open}
	if end != nil {
		formatted := end.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.LastClosedRunEnd = &formatted
	}
	sendJSON(w, http.StatusOK, resp)
}

func (h *SettlementHandler) resolveTeam(w http.ResponseWriter, r *http.Request) *domain.Team {
	slug := chi.URLParam(r, "slug")
	team, err := h.teams.GetBySlug(r.Context(), slug)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return nil
	}
	if team == nil {
		sendError(w, http.StatusNotFound, "not_found", "Team not found")
		return nil
	}
	return team
}
