package testutils

import (
	"context"
	"fmt"
	"sync"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32
	Width      int
	Version    string

	// FailOn causes Embed to return an error when any input text matches
	FailOn string

	// Err, when set, fails every call.
	Err error

	mu    sync.Mutex
	calls [][]string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Width:      4,
		Version:    "mock/v1",
	}
}

func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.FailOn != "" && text == m.FailOn {
			return nil, fmt.Errorf("mock embedding failure for: %s", text)
		}
		if emb, ok := m.Embeddings[text]; ok {
			out[i] = emb
			continue
		}
		// Default embedding derived from text length so distinct texts
		// stay distinguishable.
		vec := make([]float32, m.Width)
		vec[0] = 1
		vec[1] = float32(len(text)%7) / 7
		out[i] = vec
	}
	return out, nil
}

// Calls returns every batch Embed has received.
func (m *MockEmbedder) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.calls...)
}

func (m *MockEmbedder) ModelVersion() string { return m.Version }

func (m *MockEmbedder) Dimensions() int { return m.Width }

func (m *MockEmbedder) Close() error { return nil }
