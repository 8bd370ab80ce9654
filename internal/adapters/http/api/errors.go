package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	service "github.com/channxy/ai-credit-assessment/internal/app"
	"github.com/channxy/ai-credit-assessment/internal/domain/advisor"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Error records the handler operation that failed and the kind of failure.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind tags err with kind and op.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op and keeps whatever kind err already carries.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

type errorMapping struct {
	kind   error
	status int
	code   string
}

// Checked in order; the first matching kind wins.
var errorMappings = []errorMapping{
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{service.ErrInvalidRequest, http.StatusBadRequest, "bad_request"},
	{scoring.ErrInvalidProfile, http.StatusBadRequest, "invalid_profile"},
	{simulation.ErrUnknownScenario, http.StatusBadRequest, "unknown_scenario"},
	{simulation.ErrInvalidParameters, http.StatusBadRequest, "invalid_parameters"},
	{advisor.ErrInvalidTarget, http.StatusBadRequest, "invalid_target"},
	{model.ErrInvalidTransaction, http.StatusBadRequest, "invalid_transaction"},
	{simulation.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{repository.ErrNotFound, http.StatusNotFound, "not_found"},
	{repository.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
	{repository.ErrCancelled, http.StatusServiceUnavailable, "cancelled"},
	{repository.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
	{ErrInternal, http.StatusInternalServerError, "internal_error"},
}

// statusFor maps err onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
