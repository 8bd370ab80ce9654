package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
)

// AdviceDependencies defines the recommendation operations.
type AdviceDependencies interface {
	Recommendations(ctx context.Context, userID string) (model.RecommendationReport, error)
	ImprovementPlan(ctx context.Context, userID string, target float64, months int) (model.ImprovementPlan, error)
}

// AdviceHandler handles recommendation and improvement plan requests.
type AdviceHandler struct {
	deps AdviceDependencies
}

// NewAdviceHandler creates a new advice handler.
func NewAdviceHandler(deps AdviceDependencies) *AdviceHandler {
	return &AdviceHandler{deps: deps}
}

// HandleRecommendations handles GET /api/v1/recommendations/{userId}.
func (h *AdviceHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.deps.Recommendations(r.Context(), id)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleImprovementPlan handles
// GET /api/v1/recommendations/{userId}/improvement-plan?target_score=&timeline_months=.
// Omitted parameters fall back to the service defaults.
func (h *AdviceHandler) HandleImprovementPlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.improvement_plan"
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	q := r.URL.Query()
	var (
		target float64
		months int
	)
	if raw := q.Get("target_score"); raw != "" {
		if target, err = strconv.ParseFloat(raw, 64); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("invalid target_score %q", raw)))
			return
		}
	}
	if raw := q.Get("timeline_months"); raw != "" {
		if months, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("invalid timeline_months %q", raw)))
			return
		}
	}
	plan, err := h.deps.ImprovementPlan(r.Context(), id, target, months)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
