// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records completed conversion runs in a SQLite database.
// The store is write-and-report only: lookups never read from it.
package history

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cas2smiles/pkg/types"
)

// DefaultLimit is the number of runs Runs returns when limit is not positive.
const DefaultLimit = 20

// Run summarizes one conversion run.
type Run struct {
	ID         string    `db:"id" json:"id" yaml:"id"`
	InputPath  string    `db:"input_path" json:"input_path" yaml:"input_path"`
	OutputPath string    `db:"output_path" json:"output_path" yaml:"output_path"`
	Format     string    `db:"format" json:"format" yaml:"format"`
	StartedAt  time.Time `db:"started_at" json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at" yaml:"finished_at"`
	Resolved   int       `db:"resolved" json:"resolved" yaml:"resolved"`
	NotFound   int       `db:"not_found" json:"not_found" yaml:"not_found"`
	Failed     int       `db:"failed" json:"failed" yaml:"failed"`
}

// rowRecord is the run_rows table shape.
type rowRecord struct {
	RunID      string `db:"run_id"`
	Position   int    `db:"position"`
	Name       string `db:"name"`
	CAS        string `db:"cas"`
	ResultKind string `db:"result_kind"`
	SMILES     string `db:"smiles"`
	Detail     string `db:"detail"`
}

// Store manages the history database.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the history database at path, creating the parent
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			format TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			resolved INTEGER NOT NULL,
			not_found INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			cas TEXT NOT NULL,
			result_kind TEXT NOT NULL,
			smiles TEXT NOT NULL,
			detail TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_rows_cas ON run_rows(cas)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and the rows of t in one transaction. An empty run.ID is
// filled with a new UUID.
func (s *Store) Record(ctx context.Context, run *Run, t *types.Table) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO runs (id, input_path, output_path, format, started_at, finished_at, resolved, not_found, failed)
		 VALUES (:id, :input_path, :output_path, :format, :started_at, :finished_at, :resolved, :not_found, :failed)`,
		run,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO run_rows (run_id, position, name, cas, result_kind, smiles, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		_, err := stmt.ExecContext(ctx,
			run.ID, i, row.Name, row.CAS,
			string(row.Result.Kind), row.Result.SMILES, row.Result.Detail,
		)
		if err != nil {
			return fmt.Errorf("inserting row %s: %w", row.CAS, err)
		}
	}

	return tx.Commit()
}

// Runs returns up to limit runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, input_path, output_path, format, started_at, finished_at, resolved, not_found, failed
		 FROM runs ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return runs, nil
}

// Rows returns the rows recorded for run id, in table order.
func (s *Store) Rows(ctx context.Context, id string) ([]types.Row, error) {
	var records []rowRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT run_id, position, name, cas, result_kind, smiles, detail
		 FROM run_rows WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying rows for run %s: %w", id, err)
	}

	rows := make([]types.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, types.Row{
			Name: r.Name,
			CAS:  r.CAS,
			Result: types.Result{
				Kind:   types.ResultKind(r.ResultKind),
				SMILES: r.SMILES,
				Detail: r.Detail,
			},
		})
	}
	return rows, nil
}

// ExportYAML writes runs as a YAML sequence.
func ExportYAML(w io.Writer, runs []Run) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("encoding runs: %w", err)
	}
	return enc.Close()
}
