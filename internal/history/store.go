package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultLimit = 50

// Store keeps one row per finished evaluation run, so accuracy can be
// compared across models and over time without re-reading report files.
type Store struct {
	db *sql.DB
}

type Run struct {
	ID              int64
	RunTimestamp    string
	Model           string
	Provider        string
	Dataset         string
	TotalQuestions  int
	Correct         int
	Accuracy        float64
	TokensUsed      int
	ReasoningTokens int
	DurationSeconds float64
	CreatedAt       time.Time
}

func NewStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("history: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("history: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("history: nil db")
	}

	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS eval_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_timestamp TEXT NOT NULL,
			model TEXT NOT NULL,
			provider TEXT NOT NULL,
			dataset TEXT NOT NULL,
			total_questions INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			tokens_used INTEGER NOT NULL,
			reasoning_tokens INTEGER NOT NULL,
			duration_seconds REAL NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_runs_model_dataset ON eval_runs(model, dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_runs_created_at ON eval_runs(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, run *Run) error {
	if s == nil || s.db == nil {
		return errors.New("history: nil store")
	}
	if ctx == nil {
		return errors.New("history: nil context")
	}
	if run == nil {
		return errors.New("history: nil run")
	}

	model := strings.TrimSpace(run.Model)
	provider := strings.TrimSpace(run.Provider)
	dataset := strings.TrimSpace(run.Dataset)
	if model == "" || provider == "" || dataset == "" {
		return errors.New("history: missing model/provider/dataset")
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO eval_runs (
			run_timestamp, model, provider, dataset, total_questions, correct,
			accuracy, tokens_used, reasoning_tokens, duration_seconds, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunTimestamp, model, provider, dataset, run.TotalQuestions, run.Correct,
		run.Accuracy, run.TokensUsed, run.ReasoningTokens, run.DurationSeconds,
		createdAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		run.ID = id
	}
	run.CreatedAt = createdAt
	run.Model = model
	run.Provider = provider
	run.Dataset = dataset
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history: nil store")
	}
	if ctx == nil {
		return nil, errors.New("history: nil context")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_timestamp, model, provider, dataset, total_questions,
			correct, accuracy, tokens_used, reasoning_tokens, duration_seconds, created_at
		FROM eval_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		var r Run
		var createdAtMS int64
		if err := rows.Scan(
			&r.ID,
			&r.RunTimestamp,
			&r.Model,
			&r.Provider,
			&r.Dataset,
			&r.TotalQuestions,
			&r.Correct,
			&r.Accuracy,
			&r.TokensUsed,
			&r.ReasoningTokens,
			&r.DurationSeconds,
			&createdAtMS,
		); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdAtMS).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: scan rows: %w", err)
	}
	return out, nil
}
