package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]model.Profile
	ledger      map[string][]model.Transaction
	txIDs       map[string]map[string]struct{}
	assessments map[string][]model.Assessment
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:    make(map[string]model.Profile),
		ledger:      make(map[string][]model.Transaction),
		txIDs:       make(map[string]map[string]struct{}),
		assessments: make(map[string][]model.Assessment),
	}
}

func (s *MemoryStore) PutProfile(ctx context.Context, p model.Profile) error {
	if err := CheckContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p.Clone()
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	if err := CheckContext(ctx); err != nil {
		return model.Profile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	if err := CheckContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.txIDs[tx.UserID]
	if !ok {
		ids = make(map[string]struct{})
		s.txIDs[tx.UserID] = ids
	}
	if _, dup := ids[tx.ID]; dup {
		return ErrDuplicate
	}
	ids[tx.ID] = struct{}{}
	s.ledger[tx.UserID] = append(s.ledger[tx.UserID], tx)
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := CheckContext(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := append([]model.Transaction(nil), s.ledger[userID]...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) SaveAssessment(ctx context.Context, a model.Assessment) error {
	if err := CheckContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[a.UserID] = append(s.assessments[a.UserID], a)
	return nil
}

func (s *MemoryStore) ListAssessments(ctx context.Context, userID string) ([]model.Assessment, error) {
	if err := CheckContext(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.assessments[userID]
	out := make([]model.Assessment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

func (s *MemoryStore) LatestAssessment(ctx context.Context, userID string) (model.Assessment, error) {
	if err := CheckContext(ctx); err != nil {
		return model.Assessment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.assessments[userID]
	if len(stored) == 0 {
		return model.Assessment{}, ErrNotFound
	}
	return stored[len(stored)-1], nil
}

// MemoryHistory implements HistoryStore in process memory. Appends for the
// same user are serialized by a per-user lock; different users proceed in
// parallel.
type MemoryHistory struct {
	cfg   memoryConfig
	locks *keyedMutex

	mu      sync.RWMutex
	records map[string][]model.SimulationRecord
}

var _ HistoryStore = (*MemoryHistory)(nil)

// NewMemoryHistory creates an empty MemoryHistory.
func NewMemoryHistory(opts ...Option) *MemoryHistory {
	cfg := defaultMemoryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryHistory{
		cfg:     cfg,
		locks:   newKeyedMutex(),
		records: make(map[string][]model.SimulationRecord),
	}
}

func (h *MemoryHistory) Append(ctx context.Context, rec model.SimulationRecord) (string, error) {
	unlock := h.locks.Lock(rec.UserID)
	defer unlock()

	// A request cancelled while waiting for the lock must not be stored.
	if err := CheckContext(ctx); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = h.cfg.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = h.cfg.now().UTC()
	}
	rec.Parameters = rec.Parameters.Clone()
	rec.Result = rec.Result.Clone()

	h.mu.Lock()
	h.records[rec.UserID] = append(h.records[rec.UserID], rec)
	h.mu.Unlock()
	return rec.ID, nil
}

func (h *MemoryHistory) List(ctx context.Context, userID string, limit int) ([]model.SimulationRecord, error) {
	if err := CheckContext(ctx); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	stored := h.records[userID]
	n := len(stored)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.SimulationRecord, 0, n)
	for i := len(stored) - 1; i >= 0 && len(out) < n; i-- {
		rec := stored[i]
		rec.Parameters = rec.Parameters.Clone()
		rec.Result = rec.Result.Clone()
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of records stored across all users.
func (h *MemoryHistory) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, recs := range h.records {
		total += len(recs)
	}
	return total
}
