// Package registry tracks known papers and their ingest lifecycle in
// SQLite.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/paper"
)

// Registry persists paper records and enforces status transitions.
type Registry struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens the shared application database at path. The handle is
// shared with the session store.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// New creates a Registry over db and runs its migration.
func New(db *sql.DB, logger *zap.Logger) (*Registry, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			fail_reason TEXT NOT NULL DEFAULT '',
			model_version TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("creating papers table: %w", err)
	}
	return &Registry{db: db, logger: logger}, nil
}

// Create registers a new paper in processing state.
func (r *Registry) Create(ctx context.Context, p paper.Paper) error {
	if p.Status == "" {
		p.Status = paper.StatusProcessing
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO papers(id, title, source, uploaded_at, pages, status, fail_reason, model_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Source, p.UploadedAt, p.Pages, p.Status, p.FailReason, p.ModelVersion)
	if err != nil {
		return fmt.Errorf("registering paper %s: %w", p.ID, err)
	}

	r.logger.Debug("registered paper",
		zap.String("paper_id", p.ID),
		zap.String("source", p.Source),
	)
	return nil
}

// Get returns one paper by ID.
func (r *Registry) Get(ctx context.Context, id string) (paper.Paper, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, source, uploaded_at, pages, status, fail_reason, model_version
		FROM papers WHERE id = ?
	`, id)

	var p paper.Paper
	err := row.Scan(&p.ID, &p.Title, &p.Source, &p.UploadedAt, &p.Pages,
		&p.Status, &p.FailReason, &p.ModelVersion)
	if err == sql.ErrNoRows {
		return paper.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return paper.Paper{}, fmt.Errorf("reading paper %s: %w", id, err)
	}
	return p, nil
}

// List returns all papers, newest first.
func (r *Registry) List(ctx context.Context) ([]paper.Paper, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, source, uploaded_at, pages, status, fail_reason, model_version
		FROM papers ORDER BY uploaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var papers []paper.Paper
	for rows.Next() {
		var p paper.Paper
		if err := rows.Scan(&p.ID, &p.Title, &p.Source, &p.UploadedAt, &p.Pages,
			&p.Status, &p.FailReason, &p.ModelVersion); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// MarkReady moves a paper to ready, recording its extracted title, page
// count, and the embedding model that indexed it.
func (r *Registry) MarkReady(ctx context.Context, id, title string, pages int, modelVersion string) error {
	return r.transition(ctx, id, paper.StatusReady, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE papers SET status = ?, title = ?, pages = ?, model_version = ?, fail_reason = ''
			WHERE id = ?
		`, paper.StatusReady, title, pages, modelVersion, id)
		return err
	})
}

// MarkFailed moves a paper to failed with a reason.
func (r *Registry) MarkFailed(ctx context.Context, id, reason string) error {
	return r.transition(ctx, id, paper.StatusFailed, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE papers SET status = ?, fail_reason = ? WHERE id = ?
		`, paper.StatusFailed, reason, id)
		return err
	})
}

// MarkProcessing moves a ready or failed paper back to processing for a
// reprocess.
func (r *Registry) MarkProcessing(ctx context.Context, id string) error {
	return r.transition(ctx, id, paper.StatusProcessing, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE papers SET status = ?, fail_reason = '' WHERE id = ?
		`, paper.StatusProcessing, id)
		return err
	})
}

// transition validates the status change against the lifecycle rules
// inside one transaction.
func (r *Registry) transition(ctx context.Context, id string, to paper.Status, apply func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current paper.Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM papers WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("reading status for %s: %w", id, err)
	}

	if !paper.ValidTransition(current, to) {
		return fmt.Errorf("%w: %s -> %s for paper %s", ErrInvalidTransition, current, to, id)
	}

	if err := apply(tx); err != nil {
		return fmt.Errorf("updating paper %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	r.logger.Debug("paper status changed",
		zap.String("paper_id", id),
		zap.String("from", string(current)),
		zap.String("to", string(to)),
	)
	return nil
}

// Delete removes a paper record.
func (r *Registry) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting paper %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting paper %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
