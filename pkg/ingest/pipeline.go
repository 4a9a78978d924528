// Package ingest runs papers through extract, chunk, embed, and index,
// maintaining the registry lifecycle around each attempt.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/chunker"
	"github.com/offprinthq/offprint/pkg/embeddings"
	"github.com/offprinthq/offprint/pkg/extract"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/vector"
)

// Registrar is the slice of the paper registry the pipeline drives.
type Registrar interface {
	Create(ctx context.Context, p paper.Paper) error
	Get(ctx context.Context, id string) (paper.Paper, error)
	MarkReady(ctx context.Context, id, title string, pages int, modelVersion string) error
	MarkFailed(ctx context.Context, id, reason string) error
	MarkProcessing(ctx context.Context, id string) error
}

// Pipeline ingests papers end to end.
type Pipeline struct {
	extractor extract.Extractor
	chunker   *chunker.Chunker
	embedder  embeddings.Embedder
	store     vector.Store
	registry  Registrar
	logger    *zap.Logger
}

func NewPipeline(extractor extract.Extractor, ch *chunker.Chunker, embedder embeddings.Embedder, store vector.Store, registrar Registrar, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		chunker:   ch,
		embedder:  embedder,
		store:     store,
		registry:  registrar,
		logger:    logger,
	}
}

// Ingest registers the paper and runs it through the pipeline. On any
// failure the paper lands in failed state with a reason and the store
// holds none of its chunks.
func (p *Pipeline) Ingest(ctx context.Context, path string) (string, error) {
	paperID := uuid.NewString()

	err := p.registry.Create(ctx, paper.Paper{
		ID:     paperID,
		Title:  filepath.Base(path),
		Source: path,
		Status: paper.StatusProcessing,
	})
	if err != nil {
		return "", fmt.Errorf("registering paper: %w", err)
	}

	if err := p.run(ctx, paperID, path); err != nil {
		p.fail(paperID, err)
		return paperID, err
	}
	return paperID, nil
}

// Reprocess re-runs the pipeline for a known paper. Allowed only from
// ready or failed; existing chunks and vectors are deleted before the
// paper re-enters processing.
func (p *Pipeline) Reprocess(ctx context.Context, paperID string) error {
	rec, err := p.registry.Get(ctx, paperID)
	if err != nil {
		return err
	}

	if !paper.ValidTransition(rec.Status, paper.StatusProcessing) {
		return fmt.Errorf("paper %s is %s and cannot re-enter processing", paperID, rec.Status)
	}

	// Clearing the old index comes before the status flip so a delete
	// failure leaves the paper in its prior status, not stuck in
	// processing over stale vectors.
	if err := p.store.Delete(ctx, paperID); err != nil {
		return fmt.Errorf("clearing previous index: %w", err)
	}

	if err := p.registry.MarkProcessing(ctx, paperID); err != nil {
		return err
	}

	if err := p.run(ctx, paperID, rec.Source); err != nil {
		p.fail(paperID, err)
		return err
	}
	return nil
}

// run is the shared pipeline body: extract, chunk, embed, insert, ready.
func (p *Pipeline) run(ctx context.Context, paperID, path string) error {
	doc, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	chunks := p.chunker.Chunk(doc)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no text chunks produced", ErrExtractionFailed)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].ID = uuid.NewString()
		chunks[i].PaperID = paperID
		texts[i] = chunks[i].Text
	}

	vecs, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		if errors.Is(err, embeddings.ErrUnavailable) {
			return fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vecs) != len(chunks) {
		return fmt.Errorf("embedding chunks: got %d vectors for %d chunks", len(vecs), len(chunks))
	}

	items := make([]vector.ChunkEmbedding, len(chunks))
	for i := range chunks {
		items[i] = vector.ChunkEmbedding{Chunk: chunks[i], Vector: vecs[i]}
	}

	if err := p.store.Insert(ctx, paperID, items); err != nil {
		return fmt.Errorf("%w: %v", ErrPartialInsert, err)
	}

	title := doc.Title
	if title == "" {
		title = filepath.Base(path)
	}

	if err := p.registry.MarkReady(ctx, paperID, title, doc.PageCount, p.embedder.ModelVersion()); err != nil {
		return fmt.Errorf("marking paper ready: %w", err)
	}

	p.logger.Info("paper ingested",
		zap.String("paper_id", paperID),
		zap.String("title", title),
		zap.Int("chunks", len(chunks)),
		zap.Int("pages", doc.PageCount),
	)
	return nil
}

// fail moves the paper to failed and clears any partial index state.
// Best effort on both; the original error is what callers see.
func (p *Pipeline) fail(paperID string, cause error) {
	ctx := context.Background()

	if err := p.store.Delete(ctx, paperID); err != nil {
		p.logger.Warn("failed to clear store after ingest failure",
			zap.String("paper_id", paperID),
			zap.Error(err),
		)
	}
	if err := p.registry.MarkFailed(ctx, paperID, cause.Error()); err != nil {
		p.logger.Warn("failed to mark paper failed",
			zap.String("paper_id", paperID),
			zap.Error(err),
		)
	}
}
