package testutils

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/utils"
	"github.com/offprinthq/offprint/pkg/vector"
)

// MockStore is an in-memory vector.Store with real cosine scoring
type MockStore struct {
	mu     sync.Mutex
	papers map[string][]vector.ChunkEmbedding

	// InsertErr, when set, fails Insert.
	InsertErr error

	// DeleteErr, when set, fails Delete.
	DeleteErr error

	// SearchErr, when set, fails Search.
	SearchErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		papers: make(map[string][]vector.ChunkEmbedding),
	}
}

func (m *MockStore) Insert(_ context.Context, paperID string, items []vector.ChunkEmbedding) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.papers[paperID] = append(m.papers[paperID], items...)
	return nil
}

func (m *MockStore) Delete(_ context.Context, paperID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.papers, paperID)
	return nil
}

func (m *MockStore) Search(_ context.Context, embedding []float32, topK int, opts vector.SearchOptions) ([]paper.SearchResult, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var results []paper.SearchResult
	for paperID, items := range m.papers {
		if opts.PaperID != "" && paperID != opts.PaperID {
			continue
		}
		for _, item := range items {
			score := cosine(embedding, item.Vector)
			if opts.MinScore > 0 && score < opts.MinScore {
				continue
			}
			results = append(results, paper.SearchResult{
				ChunkID: item.Chunk.ID,
				PaperID: paperID,
				Ordinal: item.Chunk.Ordinal,
				Page:    item.Chunk.Page,
				Score:   score,
				Snippet: utils.Truncate(item.Chunk.Text, 160),
				Text:    item.Chunk.Text,
				Start:   item.Chunk.Start,
				End:     item.Chunk.End,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Ordinal < results[j].Ordinal
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *MockStore) Chunks(_ context.Context, paperID string) ([]paper.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, ok := m.papers[paperID]
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", vector.ErrNotFound, paperID)
	}
	chunks := make([]paper.Chunk, len(items))
	for i, item := range items {
		chunks[i] = item.Chunk
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Ordinal < chunks[j].Ordinal })
	return chunks, nil
}

func (m *MockStore) Vectors(_ context.Context, paperID string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, ok := m.papers[paperID]
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", vector.ErrNotFound, paperID)
	}
	sorted := append([]vector.ChunkEmbedding(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Chunk.Ordinal < sorted[j].Chunk.Ordinal })
	vecs := make([][]float32, len(sorted))
	for i, item := range sorted {
		vecs[i] = item.Vector
	}
	return vecs, nil
}

// Count returns how many chunks are stored for a paper.
func (m *MockStore) Count(paperID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.papers[paperID])
}

func (m *MockStore) Close() error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Ensure MockStore implements vector.Store
var _ vector.Store = (*MockStore)(nil)
