// Package repository defines the persistence ports for profiles, the
// transaction ledger, assessments and simulation history, together with the
// in-memory implementations. SQL and Redis backends live in subpackages.
package repository

import (
	"context"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
)

// ProfileStore keeps the latest profile per user.
type ProfileStore interface {
	PutProfile(ctx context.Context, p model.Profile) error
	// GetProfile returns ErrNotFound for unknown users.
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
}

// TransactionLedger is an append-only list of transactions per user.
type TransactionLedger interface {
	// AppendTransaction returns ErrDuplicate if (user, id) is already stored.
	AppendTransaction(ctx context.Context, tx model.Transaction) error
	// ListTransactions returns the ledger ordered by date ascending. Entries
	// with the same date keep insertion order.
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
}

// AssessmentStore keeps every assessment computed for a user.
type AssessmentStore interface {
	SaveAssessment(ctx context.Context, a model.Assessment) error
	// ListAssessments returns assessments newest first.
	ListAssessments(ctx context.Context, userID string) ([]model.Assessment, error)
	// LatestAssessment returns ErrNotFound when the user has none.
	LatestAssessment(ctx context.Context, userID string) (model.Assessment, error)
}

// HistoryStore persists simulation records. Records are never updated or
// deleted. Appends for one user are serialized so that List reflects append
// order.
type HistoryStore interface {
	// Append stores rec and returns its id. An id is generated when rec.ID
	// is empty. Either the record is fully stored or an error is returned.
	Append(ctx context.Context, rec model.SimulationRecord) (string, error)
	// List returns at most limit records, most recent first. limit <= 0
	// returns everything.
	List(ctx context.Context, userID string, limit int) ([]model.SimulationRecord, error)
}

// Store bundles the three profile-side ports. Backends usually implement
// all of them on one type.
type Store interface {
	ProfileStore
	TransactionLedger
	AssessmentStore
}
