package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// SimulationDependencies defines the what-if and history operations.
type SimulationDependencies interface {
	Simulate(ctx context.Context, req model.SimulationRequest) (model.SimulationRecord, error)
	History(ctx context.Context, userID string, limit int) ([]model.SimulationRecord, error)
}

// SimulationHandler handles scenario and history requests.
type SimulationHandler struct {
	deps SimulationDependencies
}

// NewSimulationHandler creates a new simulation handler.
func NewSimulationHandler(deps SimulationDependencies) *SimulationHandler {
	return &SimulationHandler{deps: deps}
}

// simulationResponse is the stored result together with its history id.
type simulationResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	ScenarioType types.ScenarioType `json:"scenario_type"`
	model.SimulationResult
	CreatedAt time.Time `json:"created_at"`
}

// HandleSimulate handles POST /api/v1/simulation/scenario requests.
func (h *SimulationHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate"
	var req model.SimulationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := requireUserID(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := h.deps.Simulate(r.Context(), req)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, simulationResponse{
		ID:               rec.ID,
		UserID:           rec.UserID,
		ScenarioType:     rec.ScenarioType,
		SimulationResult: rec.Result,
		CreatedAt:        rec.CreatedAt,
	})
}

// HandleHistory handles GET /api/v1/simulation/history/{userId}?limit=N.
func (h *SimulationHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.history"
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", raw)))
			return
		}
	}
	recs, err := h.deps.History(r.Context(), id, limit)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if recs == nil {
		recs = []model.SimulationRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
