package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/paper"
)

// SQLiteStore persists turns in the shared application database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates the store over db and runs its migration.
func NewSQLiteStore(db *sql.DB, logger *zap.Logger) (*SQLiteStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			paper_id TEXT NOT NULL DEFAULT '',
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			citations TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("creating turns table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id)`); err != nil {
		return nil, fmt.Errorf("creating turns index: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Append records a completed turn.
func (s *SQLiteStore) Append(ctx context.Context, sessionID, paperID string, turn paper.Turn) error {
	citations, err := json.Marshal(turn.Citations)
	if err != nil {
		return fmt.Errorf("encoding citations: %w", err)
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turns(session_id, paper_id, question, answer, citations, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sessionID, paperID, turn.Question, turn.Answer, string(citations), createdAt)
	if err != nil {
		return fmt.Errorf("appending turn for session %s: %w", sessionID, err)
	}

	s.logger.Debug("appended turn",
		zap.String("session_id", sessionID),
		zap.String("paper_id", paperID),
	)
	return nil
}

// Turns returns a session's history oldest first.
func (s *SQLiteStore) Turns(ctx context.Context, sessionID string) ([]paper.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question, answer, citations, created_at
		FROM turns WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var turns []paper.Turn
	for rows.Next() {
		var t paper.Turn
		var citations string
		if err := rows.Scan(&t.Question, &t.Answer, &citations, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if err := json.Unmarshal([]byte(citations), &t.Citations); err != nil {
			return nil, fmt.Errorf("decoding citations: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Close is a no-op; the shared database handle is owned by the caller.
func (s *SQLiteStore) Close() error {
	return nil
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
