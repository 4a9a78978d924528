// Package retriever turns a question into ranked, deduplicated context
// chunks for grounding.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/embeddings"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/vector"
)

// headroomFactor widens the store query so deduplication still leaves
// K results to return.
const headroomFactor = 4

// Options narrows a retrieval.
type Options struct {
	// PaperID restricts hits to one paper when non-empty.
	PaperID string

	// K is the maximum number of results. Zero falls back to 5.
	K int

	// MinScore drops hits below the threshold.
	MinScore float64
}

// Retriever embeds queries and searches the vector store.
type Retriever struct {
	embedder embeddings.Embedder
	store    vector.Store
	logger   *zap.Logger
}

func New(embedder embeddings.Embedder, store vector.Store, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Retrieve embeds the query, searches with headroom, drops overlapping
// near-duplicates keeping the higher score, and returns at most K hits
// ordered score descending then ordinal ascending.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts Options) ([]paper.SearchResult, error) {
	k := opts.K
	if k <= 0 {
		k = 5
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors for one text", len(vecs))
	}

	hits, err := r.store.Search(ctx, vecs[0], k*headroomFactor, vector.SearchOptions{
		PaperID:  opts.PaperID,
		MinScore: opts.MinScore,
	})
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}

	results := dedupe(hits)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Ordinal < results[j].Ordinal
	})
	if len(results) > k {
		results = results[:k]
	}

	r.logger.Debug("retrieved context",
		zap.String("paper_id", opts.PaperID),
		zap.Int("hits", len(hits)),
		zap.Int("kept", len(results)),
	)

	return results, nil
}

// dedupe drops hits whose rune span overlaps an already kept hit from
// the same paper. Hits arrive score descending, so the kept one always
// scores at least as high.
func dedupe(hits []paper.SearchResult) []paper.SearchResult {
	var kept []paper.SearchResult
	for _, hit := range hits {
		dup := false
		for _, k := range kept {
			if k.PaperID == hit.PaperID && spansOverlap(k, hit) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, hit)
		}
	}
	return kept
}

func spansOverlap(a, b paper.SearchResult) bool {
	return a.Start < b.End && b.Start < a.End
}
