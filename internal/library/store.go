// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists batch reports in SQLite so a resolved batch can
// be rendered again in another style without resolving its inputs again.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/link2ref/pkg/types"
)

var (
	// ErrBatchNotFound is returned when no saved batch matches an id.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrAmbiguousID is returned when an id prefix matches several batches.
	ErrAmbiguousID = errors.New("batch id prefix is ambiguous")
)

// BatchSummary describes a saved batch.
type BatchSummary struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Total     int       `json:"total" yaml:"total"`
	Success   int       `json:"success" yaml:"success"`
	Failed    int       `json:"failed" yaml:"failed"`
}

// Store manages the batch library database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the library database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultConfig().Store.Path
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			success INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			input TEXT NOT NULL,
			normalized TEXT,
			ok INTEGER NOT NULL,
			strategy TEXT,
			error TEXT,
			title TEXT,
			record TEXT,
			PRIMARY KEY (batch_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveReport stores a batch report under report.ID, replacing any batch
// with the same id.
func (s *Store) SaveReport(ctx context.Context, report types.BatchReport, createdAt time.Time) error {
	if report.ID == "" {
		return fmt.Errorf("saving batch: %w: empty id", types.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, report.ID); err != nil {
		return fmt.Errorf("replacing batch %s: %w", report.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, created_at, total, success, failed) VALUES (?, ?, ?, ?, ?)`,
		report.ID, createdAt.UTC().Format(time.RFC3339Nano), report.Total, report.Success, report.Failed,
	); err != nil {
		return fmt.Errorf("inserting batch %s: %w", report.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO outcomes
		(batch_id, position, input, normalized, ok, strategy, error, title, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range report.Outcomes {
		var title, record sql.NullString
		if o.Record != nil {
			data, err := json.Marshal(o.Record)
			if err != nil {
				return fmt.Errorf("marshaling record %d: %w", i, err)
			}
			record = sql.NullString{String: string(data), Valid: true}
			title = sql.NullString{String: o.Record.Title, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, report.ID, i, o.Input, o.Normalized, o.OK,
			string(o.Strategy), o.Error, title, record); err != nil {
			return fmt.Errorf("inserting outcome %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadReport reads a saved batch. id may be a unique prefix of the batch id.
func (s *Store) LoadReport(ctx context.Context, id string) (types.BatchReport, error) {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return types.BatchReport{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT input, normalized, ok, strategy, error, record
		FROM outcomes WHERE batch_id = ? ORDER BY position`, full)
	if err != nil {
		return types.BatchReport{}, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.Outcome
	for rows.Next() {
		var (
			o                           types.Outcome
			normalized, strategy, errTx sql.NullString
			record                      sql.NullString
		)
		if err := rows.Scan(&o.Input, &normalized, &o.OK, &strategy, &errTx, &record); err != nil {
			return types.BatchReport{}, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Normalized = normalized.String
		o.Strategy = types.Strategy(strategy.String)
		o.Error = errTx.String
		if record.Valid && record.String != "" {
			var rec types.Record
			if err := json.Unmarshal([]byte(record.String), &rec); err != nil {
				return types.BatchReport{}, fmt.Errorf("decoding record for %q: %w", o.Input, err)
			}
			o.Record = &rec
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return types.BatchReport{}, fmt.Errorf("iterating outcomes: %w", err)
	}

	report := types.NewBatchReport(outcomes)
	report.ID = full
	return report, nil
}

// ListBatches returns saved batches, newest first. limit <= 0 returns all.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]BatchSummary, error) {
	query := `SELECT id, created_at, total, success, failed FROM batches ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var out []BatchSummary
	for rows.Next() {
		var (
			b       BatchSummary
			created string
		)
		if err := rows.Scan(&b.ID, &created, &b.Total, &b.Success, &b.Failed); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBatch removes a saved batch and its outcomes.
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, full); err != nil {
		return fmt.Errorf("deleting batch %s: %w", full, err)
	}
	return nil
}

// resolveID expands a unique id prefix to the full batch id.
func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrBatchNotFound)
	}
	var exact string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM batches WHERE id = ?`, id).Scan(&exact)
	switch {
	case err == nil:
		return exact, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("looking up batch %s: %w", id, err)
	}

	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM batches WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return "", fmt.Errorf("looking up batch %s: %w", id, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var full string
		if err := rows.Scan(&full); err != nil {
			return "", fmt.Errorf("scanning batch id: %w", err)
		}
		ids = append(ids, full)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}
