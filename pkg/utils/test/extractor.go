package testutils

import (
	"context"

	"github.com/offprinthq/offprint/pkg/extract"
)

// MockExtractor is a scripted extract.Extractor
type MockExtractor struct {
	// Docs maps file paths to extraction results.
	Docs map[string]*extract.Document

	// Err, when set, fails every extraction.
	Err error
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{Docs: make(map[string]*extract.Document)}
}

func (m *MockExtractor) Extract(ctx context.Context, path string) (*extract.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if doc, ok := m.Docs[path]; ok {
		return doc, nil
	}
	return nil, extract.ErrNoText
}

// Ensure MockExtractor implements extract.Extractor
var _ extract.Extractor = (*MockExtractor)(nil)
