package service

import (
	"errors"

	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/domain/advisor"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
)

// ErrInvalidRequest reports a request missing required identifiers.
var ErrInvalidRequest = errors.New("invalid request")

// ErrorKind names the category of err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "bad_request"
	case errors.Is(err, scoring.ErrInvalidProfile):
		return "invalid_profile"
	case errors.Is(err, simulation.ErrUnknownScenario):
		return "unknown_scenario"
	case errors.Is(err, simulation.ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, simulation.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, advisor.ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, model.ErrInvalidTransaction):
		return "invalid_transaction"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrCancelled):
		return "cancelled"
	case errors.Is(err, repository.ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "error"
	}
}
