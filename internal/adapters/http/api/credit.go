package api

import (
	"context"
	"net/http"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
)

// CreditDependencies defines the assessment, profile and ledger operations.
type CreditDependencies interface {
	Assess(ctx context.Context, userID string) (model.Assessment, error)
	Assessments(ctx context.Context, userID string) ([]model.Assessment, error)
	PutProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	Profile(ctx context.Context, userID string) (model.Profile, error)
	AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, bool, error)
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
}

// CreditHandler handles assessment, profile and transaction requests.
type CreditHandler struct {
	deps CreditDependencies
}

// NewCreditHandler creates a new credit handler.
func NewCreditHandler(deps CreditDependencies) *CreditHandler {
	return &CreditHandler{deps: deps}
}

// assessRequest carries the user to assess. Other fields are accepted and
// ignored.
type assessRequest struct {
	UserID string `json:"user_id"`
}

// transactionResponse is a stored transaction plus whether it was a replay.
type transactionResponse struct {
	model.Transaction
	Duplicate bool `json:"duplicate"`
}

// HandleAssess handles POST /api/v1/credit/assess requests.
func (h *CreditHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	const op = "api.assess"
	var req assessRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := requireUserID(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.Assess(r.Context(), req.UserID)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleListAssessments handles GET /api/v1/credit/assessments/{userId}.
func (h *CreditHandler) HandleListAssessments(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_assessments"
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Assessments(r.Context(), id)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if out == nil {
		out = []model.Assessment{}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandlePutProfile handles POST /api/v1/credit/profiles requests.
func (h *CreditHandler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_profile"
	var p model.Profile
	if err := decode(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := requireUserID(p.UserID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	stored, err := h.deps.PutProfile(r.Context(), p)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// HandleGetProfile handles GET /api/v1/credit/profiles/{userId}.
func (h *CreditHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Profile(r.Context(), id)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleAddTransaction handles POST /api/v1/credit/transactions. A replayed
// transaction id answers 200 instead of 201.
func (h *CreditHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_transaction"
	var tx model.Transaction
	if err := decode(w, r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := requireUserID(tx.UserID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	stored, dup, err := h.deps.AddTransaction(r.Context(), tx)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	status := http.StatusCreated
	if dup {
		status = http.StatusOK
	}
	writeJSON(w, status, transactionResponse{Transaction: stored, Duplicate: dup})
}

// HandleListTransactions handles GET /api/v1/credit/transactions/{userId}.
func (h *CreditHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_transactions"
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	txs, err := h.deps.Transactions(r.Context(), id)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}
