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

// TakesHandler handles take ledger HTTP requests
type TakesHandler struct {
	takes        service.TakesService
	teams        repository.TeamRepository
	participants repository.ParticipantRepository
	logger       *logger.Logger
}

// NewTakesHandler creates a new takes handler
func NewTakesHandler(takes service.TakesService, repos *repository.Repositories, log *logger.Logger) *TakesHandler {
	return &TakesHandler{
		takes:        takes,
		teams:        repos.Teams,
		participants: repos.Participants,
		logger:       log,
	}
}

// SetTakeRequest is the body of PUT take requests
type SetTakeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TakeResponse reports a single nominal take
type TakeResponse struct {
	Team   string          `json:"team"`
	Member string          `json:"member"`
	Amount decimal.Decimal `json:"amount"`
}

// RegisterRoutes mounts the take ledger endpoints
func (h *TakesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/teams/{slug}/takes", func(r chi.Router) {
		r.Get("/", h.GetActualTakes)
		r.Get("/{username}", h.GetTake)
		r.Put("/{username}", h.SetTake)
	})
	r.Delete("/participants/{username}/takes", h.ClearTakes)
}

// GetActualTakes handles GET /v1/teams/{slug}/takes
func (h *TakesHandler) GetActualTakes(w http.ResponseWriter, r *http.Request) {
	team := h.resolveTeam(w, r)
	if team == nil {
		return
	}
	rows, err := h.takes.ComputeActualTakes(r.Context(), team)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"team":             team.Slug,
		"available":        team.Available,
		"distributing":     team.Distributing,
		"ndistributing_to": team.NDistributingTo,
		"takes":            rows,
	})
}

// GetTake handles GET /v1/teams/{slug}/takes/{username}. With
// ?as_of=last-payday it reports the take frozen at the last closed
// settlement run instead of the current one.
func (h *TakesHandler) GetTake(w http.ResponseWriter, r *http.Request) {
	team := h.resolveTeam(w, r)
	if team == nil {
		return
	}
	member := h.resolveParticipant(w, r, chi.URLParam(r, "username"))
	if member == nil {
		return
	}

	var amount decimal.Decimal
	var err error
	if r.URL.Query().Get("as_of") == "last-payday" {
		amount, err = h.takes.GetTakeLastWeekFor(r.Context(), team, member)
	} else {
		amount, err = h.takes.GetTakeFor(r.Context(), team, member)
	}
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, TakeResponse{Team: team.Slug, Member: member.Username, Amount: amount})
}

// SetTake handles PUT /v1/teams/{slug}/takes/{username}. The recorder comes
// from the X-Participant header; authentication itself belongs to the
// identity collaborator in front of this service.
func (h *TakesHandler) SetTake(w http.ResponseWriter, r *http.Request) {
	team := h.resolveTeam(w, r)
	if team == nil {
		return
	}
	member := h.resolveParticipant(w, r, chi.URLParam(r, "username"))
	if member == nil {
		return
	}

	recorderName := r.Header.Get("X-Participant")
	if recorderName == "" {
		sendError(w, http.StatusUnauthorized, "unauthenticated", "X-Participant header is required")
		return
	}
	recorder := h.resolveParticipant(w, r, recorderName)
	if recorder == nil {
		return
	}

	var req SetTakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	amount, err := h.takes.SetTakeFor(r.Context(), team, member, recorder, req.Amount)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, TakeResponse{Team: team.Slug, Member: member.Username, Amount: amount})
}

// ClearTakes handles DELETE /v1/participants/{username}/takes
func (h *TakesHandler) ClearTakes(w http.ResponseWriter, r *http.Request) {
	participant := h.resolveParticipant(w, r, chi.URLParam(r, "username"))
	if participant == nil {
		return
	}
	if err := h.takes.ClearTakes(r.Context(), participant); err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"participant": participant.Username})
}

func (h *TakesHandler) resolveTeam(w http.ResponseWriter, r *http.Request) *domain.Team {
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

func (h *TakesHandler) resolveParticipant(w http.ResponseWriter, r *http.Request, username string) *domain.Participant {
	participant, err := h.participants.GetByUsername(r.Context(), username)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return nil
	}
	if participant == nil {
		sendError(w, http.StatusNotFound, "not_found", "Participant not found")
		return nil
	}
	return participant
}
