package wiring

import (
	"context"

	"github.com/offprinthq/offprint/pkg/assistant"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/retriever"
)

// NewSpanAssistant builds an assistant for translate and simplify, which
// operate on literal text spans and never retrieve context. Skipping the
// retriever avoids opening the chunk index and embedding provider for
// commands that only generate.
func NewSpanAssistant(rt *Runtime) (*assistant.Assistant, error) {
	generator, err := rt.Generator()
	if err != nil {
		return nil, err
	}

	sessions, err := rt.Sessions()
	if err != nil {
		return nil, err
	}

	return assistant.New(noRetriever{}, generator, sessions, assistant.Config{}, rt.Logger), nil
}

// noRetriever backs span operations, which never ask for context.
type noRetriever struct{}

func (noRetriever) Retrieve(_ context.Context, _ string, _ retriever.Options) ([]paper.SearchResult, error) {
	return nil, nil
}
