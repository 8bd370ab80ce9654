// Package postgres implements the repository ports on PostgreSQL using
// lib/pq. Documents are stored as JSONB; simulation history appends take a
// per-user advisory lock inside their transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS credit_profiles (
	user_id    TEXT PRIMARY KEY,
	profile    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS credit_transactions (
	seq        BIGSERIAL,
	user_id    TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, id)
);
CREATE TABLE IF NOT EXISTS credit_assessments (
	seq         BIGSERIAL,
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	body        JSONB NOT NULL,
	computed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS credit_assessments_user_seq ON credit_assessments (user_id, seq DESC);
CREATE TABLE IF NOT EXISTS simulation_history (
	seq           BIGSERIAL,
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	scenario_type TEXT NOT NULL,
	parameters    JSONB NOT NULL,
	score_change  DOUBLE PRECISION NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS simulation_history_user_seq ON simulation_history (user_id, seq DESC);
`

const uniqueViolation = "23505"

// Store implements repository.Store and repository.HistoryStore.
type Store struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

var (
	_ repository.Store        = (*Store)(nil)
	_ repository.HistoryStore = (*Store)(nil)
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithIDGenerator sets the generator used for history record ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock sets the time source for records without a timestamp.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// New wraps an open database handle.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, newID: uuid.NewString, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to dsn and sizes the pool.
func Open(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen / 2)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, repository.Classify(ctx, err)
	}
	return db, nil
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return repository.Classify(ctx, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return repository.Classify(ctx, s.db.PingContext(ctx))
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PutProfile(ctx context.Context, p model.Profile) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = s.now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credit_profiles (user_id, profile, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = EXCLUDED.updated_at`,
		p.UserID, body, updated)
	return repository.Classify(ctx, err)
}

func (s *Store) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT profile FROM credit_profiles WHERE user_id = $1`, userID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, repository.Classify(ctx, err)
	}
	var p model.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Profile{}, fmt.Errorf("%w: decode profile: %v", repository.ErrStorageUnavailable, err)
	}
	return p, nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	body, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credit_transactions (user_id, id, body, occurred_at) VALUES ($1, $2, $3, $4)`,
		tx.UserID, tx.ID, body, tx.Date)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return repository.Classify(ctx, err)
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM credit_transactions WHERE user_id = $1 ORDER BY occurred_at ASC, seq ASC`, userID)
	if err != nil {
		return nil, repository.Classify(ctx, err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		if err := scanJSON(rows, &tx); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, repository.Classify(ctx, rows.Err())
}

func (s *Store) SaveAssessment(ctx context.Context, a model.Assessment) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credit_assessments (id, user_id, body, computed_at) VALUES ($1, $2, $3, $4)`,
		a.ID, a.UserID, body, a.ComputedAt)
	return repository.Classify(ctx, err)
}

func (s *Store) ListAssessments(ctx context.Context, userID string) ([]model.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM credit_assessments WHERE user_id = $1 ORDER BY seq DESC`, userID)
	if err != nil {
		return nil, repository.Classify(ctx, err)
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		if err := scanJSON(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, repository.Classify(ctx, rows.Err())
}

func (s *Store) LatestAssessment(ctx context.Context, userID string) (model.Assessment, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM credit_assessments WHERE user_id = $1 ORDER BY seq DESC LIMIT 1`, userID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Assessment{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Assessment{}, repository.Classify(ctx, err)
	}
	var a model.Assessment
	if err := json.Unmarshal(body, &a); err != nil {
		return model.Assessment{}, fmt.Errorf("%w: decode assessment: %v", repository.ErrStorageUnavailable, err)
	}
	return a, nil
}

// Append stores rec in its own transaction. The advisory lock serializes
// appends per user so seq order matches append order.
func (s *Store) Append(ctx context.Context, rec model.SimulationRecord) (id string, err error) {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return "", fmt.Errorf("encode parameters: %w", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", repository.Classify(ctx, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, rec.UserID); err != nil {
		return "", repository.Classify(ctx, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO simulation_history (id, user_id, scenario_type, parameters, score_change, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, string(rec.ScenarioType), params, rec.ScoreChange, result, rec.CreatedAt); err != nil {
		return "", repository.Classify(ctx, err)
	}
	if err = tx.Commit(); err != nil {
		return "", repository.Classify(ctx, err)
	}
	return rec.ID, nil
}

func (s *Store) List(ctx context.Context, userID string, limit int) ([]model.SimulationRecord, error) {
	query := `SELECT id, user_id, scenario_type, parameters, score_change, result, created_at
		FROM simulation_history WHERE user_id = $1 ORDER BY seq DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repository.Classify(ctx, err)
	}
	defer rows.Close()

	out := []model.SimulationRecord{}
	for rows.Next() {
		var (
			rec            model.SimulationRecord
			scenario       string
			params, result []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &scenario, &params, &rec.ScoreChange, &result, &rec.CreatedAt); err != nil {
			return nil, repository.Classify(ctx, err)
		}
		rec.ScenarioType = types.ScenarioType(scenario)
		if err := json.Unmarshal(params, &rec.Parameters); err != nil {
			return nil, fmt.Errorf("%w: decode parameters: %v", repository.ErrStorageUnavailable, err)
		}
		if err := json.Unmarshal(result, &rec.Result); err != nil {
			return nil, fmt.Errorf("%w: decode result: %v", repository.ErrStorageUnavailable, err)
		}
		out = append(out, rec)
	}
	return out, repository.Classify(ctx, rows.Err())
}

func scanJSON(rows *sql.Rows, dst any) error {
	var body []byte
	if err := rows.Scan(&body); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrStorageUnavailable, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode row: %v", repository.ErrStorageUnavailable, err)
	}
	return nil
}
