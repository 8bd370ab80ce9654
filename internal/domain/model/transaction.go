package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Transaction is a signed ledger entry: income is positive, expense negative.
type Transaction struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	Amount      float64               `json:"amount"`
	Type        types.TransactionType `json:"type"`
	Category    string                `json:"category"`
	Description string                `json:"description,omitempty"`
	Merchant    string                `json:"merchant,omitempty"`
	Date        time.Time             `json:"date"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Validate checks the required fields and that the sign agrees with the type.
func (t Transaction) Validate() error {
	switch {
	case strings.TrimSpace(t.UserID) == "":
		return fmt.Errorf("%w: missing user_id", ErrInvalidTransaction)
	case !t.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	case t.Amount == 0:
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidTransaction)
	case t.Type == types.TransactionIncome && t.Amount < 0:
		return fmt.Errorf("%w: income amount must be positive", ErrInvalidTransaction)
	case t.Type == types.TransactionExpense && t.Amount > 0:
		return fmt.Errorf("%w: expense amount must be negative", ErrInvalidTransaction)
	case t.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}

// TransactionAggregates summarizes a ledger snapshot.
type TransactionAggregates struct {
	Count         int       `json:"count"`
	TotalIncome   float64   `json:"total_income"`
	TotalExpenses float64   `json:"total_expenses"`
	Net           float64   `json:"net"`
	FirstDate     time.Time `json:"first_date,omitempty"`
	LastDate      time.Time `json:"last_date,omitempty"`
}

// Aggregate folds txs into totals. TotalExpenses is reported as a positive sum.
func Aggregate(txs []Transaction) TransactionAggregates {
	var agg TransactionAggregates
	for _, t := range txs {
		agg.Count++
		if t.Amount >= 0 {
			agg.TotalIncome += t.Amount
		} else {
			agg.TotalExpenses -= t.Amount
		}
		if agg.FirstDate.IsZero() || t.Date.Before(agg.FirstDate) {
			agg.FirstDate = t.Date
		}
		if t.Date.After(agg.LastDate) {
			agg.LastDate = t.Date
		}
	}
	agg.Net = agg.TotalIncome - agg.TotalExpenses
	return agg
}
