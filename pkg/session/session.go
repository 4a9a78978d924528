// Package session persists conversation history per session.
package session

import (
	"context"

	"github.com/offprinthq/offprint/pkg/paper"
)

// Store appends and reads conversation turns.
type Store interface {
	// Append records a completed turn for the session.
	Append(ctx context.Context, sessionID, paperID string, turn paper.Turn) error

	// Turns returns a session's turns oldest first.
	Turns(ctx context.Context, sessionID string) ([]paper.Turn, error)

	// Close releases any resources held by the store.
	Close() error
}
