package testutils

import (
	"context"
	"sync"

	"github.com/offprinthq/offprint/pkg/arxiv"
)

// MockSearcher is a scripted arxiv.Searcher
type MockSearcher struct {
	Results []arxiv.Result

	// Err, when set, fails every search.
	Err error

	mu      sync.Mutex
	queries []string
}

func NewMockSearcher(results ...arxiv.Result) *MockSearcher {
	return &MockSearcher{Results: results}
}

func (m *MockSearcher) Search(_ context.Context, query string, maxResults int) ([]arxiv.Result, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Results) > maxResults {
		return m.Results[:maxResults], nil
	}
	return m.Results, nil
}

// Queries returns every query Search has received.
func (m *MockSearcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Ensure MockSearcher implements arxiv.Searcher
var _ arxiv.Searcher = (*MockSearcher)(nil)
