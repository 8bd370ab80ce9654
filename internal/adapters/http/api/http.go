// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/channxy/ai-credit-assessment/pkg/logger"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreditDependencies
	SimulationDependencies
	AdviceDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	creditHandler     *CreditHandler
	simulationHandler *SimulationHandler
	adviceHandler     *AdviceHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		creditHandler:     NewCreditHandler(deps),
		simulationHandler: NewSimulationHandler(deps),
		adviceHandler:     NewAdviceHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/credit/assess", MetricsMiddleware(s.creditHandler.HandleAssess, "assess")).Methods(http.MethodPost)
	v1.HandleFunc("/credit/assessments/{userId}", MetricsMiddleware(s.creditHandler.HandleListAssessments, "assessments")).Methods(http.MethodGet)
	v1.HandleFunc("/credit/profiles", MetricsMiddleware(s.creditHandler.HandlePutProfile, "profiles")).Methods(http.MethodPost)
	v1.HandleFunc("/credit/profiles/{userId}", MetricsMiddleware(s.creditHandler.HandleGetProfile, "profiles")).Methods(http.MethodGet)
	v1.HandleFunc("/credit/transactions", MetricsMiddleware(s.creditHandler.HandleAddTransaction, "transactions")).Methods(http.MethodPost)
	v1.HandleFunc("/credit/transactions/{userId}", MetricsMiddleware(s.creditHandler.HandleListTransactions, "transactions")).Methods(http.MethodGet)

	v1.HandleFunc("/simulation/scenario", MetricsMiddleware(s.simulationHandler.HandleSimulate, "simulate")).Methods(http.MethodPost)
	v1.HandleFunc("/simulation/history/{userId}", MetricsMiddleware(s.simulationHandler.HandleHistory, "history")).Methods(http.MethodGet)

	v1.HandleFunc("/recommendations/{userId}", MetricsMiddleware(s.adviceHandler.HandleRecommendations, "recommendations")).Methods(http.MethodGet)
	v1.HandleFunc("/recommendations/{userId}/improvement-plan", MetricsMiddleware(s.adviceHandler.HandleImprovementPlan, "improvement_plan")).Methods(http.MethodGet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes the status and code that match the kind of err.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.String("requestId", w.Header().Get(RequestIDHeader)),
			logger.Error(err),
		)
	}
	if code == "internal_error" {
		// Unclassified causes stay in the log.
		writeError(w, status, code, NewKind(op, ErrInternal))
		return
	}
	writeError(w, status, code, Wrap(op, err))
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// userID returns the {userId} path variable.
func userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(mux.Vars(r)["userId"])
	if id == "" {
		return "", errors.New("missing user id")
	}
	return id, nil
}

func requireUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("missing user_id")
	}
	return nil
}
