package testutils

import (
	"context"
	"sync"

	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/session"
)

// MockSessionStore is an in-memory session.Store
type MockSessionStore struct {
	mu    sync.Mutex
	turns map[string][]paper.Turn

	// Err, when set, fails Append.
	Err error
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{turns: make(map[string][]paper.Turn)}
}

func (m *MockSessionStore) Append(_ context.Context, sessionID, paperID string, turn paper.Turn) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[sessionID] = append(m.turns[sessionID], turn)
	return nil
}

func (m *MockSessionStore) Turns(_ context.Context, sessionID string) ([]paper.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]paper.Turn(nil), m.turns[sessionID]...), nil
}

func (m *MockSessionStore) Close() error { return nil }

// Ensure MockSessionStore implements session.Store
var _ session.Store = (*MockSessionStore)(nil)
