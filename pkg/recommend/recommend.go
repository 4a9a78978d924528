// Package recommend ranks arXiv candidates by similarity to an indexed
// paper.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/arxiv"
	"github.com/offprinthq/offprint/pkg/embeddings"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/vector"
)

// DefaultCandidatePool is how many arXiv results are fetched for
// re-ranking.
const DefaultCandidatePool = 20

// PaperInfo looks up registered paper metadata.
type PaperInfo interface {
	Get(ctx context.Context, id string) (paper.Paper, error)
}

// Engine produces similar-paper recommendations.
type Engine struct {
	store         vector.Store
	embedder      embeddings.Embedder
	searcher      arxiv.Searcher
	papers        PaperInfo
	candidatePool int
	logger        *zap.Logger
}

// Config tunes the engine.
type Config struct {
	// CandidatePool is how many arXiv hits to re-rank. Defaults to
	// DefaultCandidatePool if zero.
	CandidatePool int
}

func New(store vector.Store, embedder embeddings.Embedder, searcher arxiv.Searcher, papers PaperInfo, cfg Config, logger *zap.Logger) *Engine {
	pool := cfg.CandidatePool
	if pool <= 0 {
		pool = DefaultCandidatePool
	}
	return &Engine{
		store:         store,
		embedder:      embedder,
		searcher:      searcher,
		papers:        papers,
		candidatePool: pool,
		logger:        logger,
	}
}

// Recommend searches arXiv with keywords from the paper and re-ranks the
// candidate pool by cosine similarity between the paper's chunk centroid
// and each candidate's abstract embedding. The source paper itself and
// duplicate IDs are dropped; at most limit candidates return.
func (e *Engine) Recommend(ctx context.Context, paperID string, limit int) ([]paper.Candidate, error) {
	if limit <= 0 {
		limit = 5
	}

	p, err := e.papers.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("looking up paper: %w", err)
	}

	vecs, err := e.store.Vectors(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("reading paper vectors: %w", err)
	}
	center, err := centroid(vecs)
	if err != nil {
		return nil, fmt.Errorf("computing centroid for %s: %w", paperID, err)
	}

	query, err := e.keywordQuery(ctx, p)
	if err != nil {
		return nil, err
	}

	results, err := e.searcher.Search(ctx, query, e.candidatePool)
	if err != nil {
		return nil, fmt.Errorf("searching arxiv: %w", err)
	}

	candidates := e.rank(ctx, p, center, results)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	e.logger.Debug("recommended papers",
		zap.String("paper_id", paperID),
		zap.String("query", query),
		zap.Int("pool", len(results)),
		zap.Int("returned", len(candidates)),
	)

	return candidates, nil
}

// keywordQuery derives search terms from the title, falling back to the
// head of the paper's first chunk.
func (e *Engine) keywordQuery(ctx context.Context, p paper.Paper) (string, error) {
	if kw := extractKeywords(p.Title); kw != "" {
		return kw, nil
	}

	chunks, err := e.store.Chunks(ctx, p.ID)
	if err != nil {
		return "", fmt.Errorf("reading chunks for keywords: %w", err)
	}
	if kw := extractKeywords(chunks[0].Text); kw != "" {
		return kw, nil
	}
	return "", fmt.Errorf("no keywords derivable for paper %s", p.ID)
}

// rank embeds candidate abstracts and orders them by similarity to the
// paper centroid, deduplicating and excluding the source paper.
func (e *Engine) rank(ctx context.Context, source paper.Paper, center []float32, results []arxiv.Result) []paper.Candidate {
	var (
		kept []arxiv.Result
		seen = make(map[string]struct{})
	)
	for _, r := range results {
		if r.ArxivID == "" || r.Abstract == "" {
			continue
		}
		if _, dup := seen[r.ArxivID]; dup {
			continue
		}
		if e.isSource(source, r) {
			continue
		}
		seen[r.ArxivID] = struct{}{}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil
	}

	abstracts := make([]string, len(kept))
	for i, r := range kept {
		abstracts[i] = r.Abstract
	}

	vecs, err := e.embedder.Embed(ctx, abstracts)
	if err != nil || len(vecs) != len(kept) {
		// Fall back to the API's relevance order, unscored.
		e.logger.Warn("abstract embedding failed, keeping arxiv order", zap.Error(err))
		candidates := make([]paper.Candidate, len(kept))
		for i, r := range kept {
			candidates[i] = toCandidate(r, 0)
		}
		return candidates
	}

	candidates := make([]paper.Candidate, len(kept))
	for i, r := range kept {
		candidates[i] = toCandidate(r, cosine(center, vecs[i]))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// isSource matches a candidate against the registered paper's source
// reference or title.
func (e *Engine) isSource(source paper.Paper, r arxiv.Result) bool {
	if r.ArxivID != "" && strings.Contains(source.Source, r.ArxivID) {
		return true
	}
	return source.Title != "" && strings.EqualFold(strings.TrimSpace(source.Title), r.Title)
}

func toCandidate(r arxiv.Result, score float64) paper.Candidate {
	return paper.Candidate{
		ArxivID:   r.ArxivID,
		Title:     r.Title,
		Abstract:  r.Abstract,
		Authors:   strings.Join(r.Authors, ", "),
		Published: r.Published,
		Score:     score,
	}
}

// centroid is the normalized mean of the vectors.
func centroid(vecs [][]float32) ([]float32, error) {
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no vectors")
	}

	out := make([]float64, len(vecs[0]))
	for _, v := range vecs {
		if len(v) != len(out) {
			return nil, fmt.Errorf("ragged vector widths %d and %d", len(v), len(out))
		}
		for i, x := range v {
			out[i] += float64(x)
		}
	}

	var norm float64
	for i := range out {
		out[i] /= float64(len(vecs))
		norm += out[i] * out[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("zero centroid")
	}

	result := make([]float32, len(out))
	for i := range out {
		result[i] = float32(out[i] / norm)
	}
	return result, nil
}

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
