package model

import (
	"maps"
	"slices"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Parameters carries scenario-specific inputs. Values are float64 or string
// as decoded from JSON.
type Parameters map[string]any

// Clone returns a shallow copy; values are immutable scalars.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	c := make(Parameters, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// SimulationRequest asks what a scenario would do to a user's score.
type SimulationRequest struct {
	UserID       string             `json:"user_id"`
	ScenarioType types.ScenarioType `json:"scenario_type"`
	Parameters   Parameters         `json:"parameters"`
}

// SimulationResult is the immutable outcome of a simulation.
type SimulationResult struct {
	OriginalScore    float64                 `json:"original_score"`
	SimulatedScore   float64                 `json:"simulated_score"`
	ScoreChange      float64                 `json:"score_change"`
	FactorChanges    map[types.Factor]string `json:"factor_changes"`
	ParameterChanges map[string]string       `json:"parameter_changes"`
	Recommendations  []string                `json:"recommendations"`
}

// Clone returns a copy of r that shares no maps or slices with it.
func (r SimulationResult) Clone() SimulationResult {
	r.FactorChanges = maps.Clone(r.FactorChanges)
	r.ParameterChanges = maps.Clone(r.ParameterChanges)
	r.Recommendations = slices.Clone(r.Recommendations)
	return r
}

// SimulationRecord is a persisted simulation run. Records are append-only.
type SimulationRecord struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	ScenarioType types.ScenarioType `json:"scenario_type"`
	Parameters   Parameters         `json:"parameters"`
	ScoreChange  float64            `json:"score_change"`
	Result       SimulationResult   `json:"result"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewSimulationRecord builds a record for req and res. The id is left empty
// for the history store to assign.
func NewSimulationRecord(req SimulationRequest, res SimulationResult, now time.Time) SimulationRecord {
	return SimulationRecord{
		UserID:       req.UserID,
		ScenarioType: req.ScenarioType,
		Parameters:   req.Parameters.Clone(),
		ScoreChange:  res.ScoreChange,
		Result:       res,
		CreatedAt:    now.UTC(),
	}
}
