package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/offprinthq/offprint/pkg/llm"
)

// MockGenerator is a scripted llm.Generator
type MockGenerator struct {
	// Tokens are streamed one per token, then Done.
	Tokens []string

	// Err, when set, fails Generate before any token.
	Err error

	// StreamErr, when set, is emitted mid-stream after Tokens instead
	// of Done.
	StreamErr error

	// Block, when non-nil, makes the stream wait between tokens until
	// the channel closes, so tests can cancel mid-stream.
	Block chan struct{}

	mu       sync.Mutex
	requests []llm.Request
}

func NewMockGenerator(tokens ...string) *MockGenerator {
	return &MockGenerator{Tokens: tokens}
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (<-chan llm.Token, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make(chan llm.Token)
	go func() {
		defer close(out)
		for _, text := range m.Tokens {
			if m.Block != nil {
				select {
				case <-m.Block:
				case <-ctx.Done():
					emitCancel(out)
					return
				}
			}
			select {
			case out <- llm.Token{Text: text}:
			case <-ctx.Done():
				emitCancel(out)
				return
			}
		}
		if m.StreamErr != nil {
			out <- llm.Token{Err: m.StreamErr}
			return
		}
		out <- llm.Token{Done: true}
	}()
	return out, nil
}

// emitCancel delivers a cancellation token without blocking on a
// departed consumer.
func emitCancel(out chan<- llm.Token) {
	select {
	case out <- llm.Token{Err: llm.ErrCancelled}:
	default:
	}
}

// Requests returns every request Generate has received.
func (m *MockGenerator) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// CallCount returns how many times Generate was invoked.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastPrompt returns the prompt of the most recent request.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ""
	}
	return m.requests[len(m.requests)-1].Prompt
}

// Answer returns the full scripted answer text.
func (m *MockGenerator) Answer() string {
	return strings.Join(m.Tokens, "")
}

func (m *MockGenerator) Close() error { return nil }

// Ensure MockGenerator implements llm.Generator
var _ llm.Generator = (*MockGenerator)(nil)
