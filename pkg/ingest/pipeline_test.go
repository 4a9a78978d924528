package ingest_test

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/chunker"
	"github.com/offprinthq/offprint/pkg/embeddings"
	"github.com/offprinthq/offprint/pkg/extract"
	"github.com/offprinthq/offprint/pkg/ingest"
	"github.com/offprinthq/offprint/pkg/paper"
	testutils "github.com/offprinthq/offprint/pkg/utils/test"
)

// memRegistrar is an in-memory ingest.Registrar enforcing the paper
// lifecycle.
type memRegistrar struct {
	mu     sync.Mutex
	papers map[string]paper.Paper
}

func newMemRegistrar() *memRegistrar {
	return &memRegistrar{papers: make(map[string]paper.Paper)}
}

func (m *memRegistrar) Create(_ context.Context, p paper.Paper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.papers[p.ID]; ok {
		return fmt.Errorf("duplicate paper %s", p.ID)
	}
	m.papers[p.ID] = p
	return nil
}

func (m *memRegistrar) Get(_ context.Context, id string) (paper.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.papers[id]
	if !ok {
		return paper.Paper{}, fmt.Errorf("paper not found: %s", id)
	}
	return p, nil
}

func (m *memRegistrar) set(id string, to paper.Status, mutate func(*paper.Paper)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.papers[id]
	if !ok {
		return fmt.Errorf("paper not found: %s", id)
	}
	if !paper.ValidTransition(p.Status, to) {
		return fmt.Errorf("invalid transition %s -> %s", p.Status, to)
	}
	p.Status = to
	mutate(&p)
	m.papers[id] = p
	return nil
}

func (m *memRegistrar) MarkReady(_ context.Context, id, title string, pages int, modelVersion string) error {
	return m.set(id, paper.StatusReady, func(p *paper.Paper) {
		p.Title = title
		p.Pages = pages
		p.ModelVersion = modelVersion
		p.FailReason = ""
	})
}

func (m *memRegistrar) MarkFailed(_ context.Context, id, reason string) error {
	return m.set(id, paper.StatusFailed, func(p *paper.Paper) {
		p.FailReason = reason
	})
}

func (m *memRegistrar) MarkProcessing(_ context.Context, id string) error {
	return m.set(id, paper.StatusProcessing, func(p *paper.Paper) {
		p.FailReason = ""
	})
}

func newChunker() *chunker.Chunker {
	c, err := chunker.New(chunker.Config{MaxChars: 100, OverlapChars: 20, BoundaryTolerance: 30})
	Expect(err).NotTo(HaveOccurred())
	return c
}

func docOf(text string) *extract.Document {
	return &extract.Document{
		Text:      text,
		Pages:     []extract.PageSpan{{Page: 1, Start: 0, End: utf8.RuneCountInString(text)}},
		PageCount: 1,
		Title:     "Sample Paper",
	}
}

var _ = Describe("Pipeline", func() {
	var (
		ctx       context.Context
		extractor *testutils.MockExtractor
		embedder  *testutils.MockEmbedder
		store     *testutils.MockStore
		reg       *memRegistrar
		pipeline  *ingest.Pipeline
	)

	const longText = "Self-attention computes pairwise relevance. " +
		"Positional encodings add order. " +
		"Residual connections ease optimization. " +
		"Layer norm stabilizes training throughout the network."

	BeforeEach(func() {
		ctx = context.Background()
		extractor = testutils.NewMockExtractor()
		embedder = testutils.NewMockEmbedder()
		store = testutils.NewMockStore()
		reg = newMemRegistrar()
		pipeline = ingest.NewPipeline(extractor, newChunker(), embedder, store, reg, zap.NewNop())
	})

	Describe("Ingest", func() {
		It("indexes a paper and marks it ready with contiguous ordinals", func() {
			extractor.Docs["paper.pdf"] = docOf(longText)

			paperID, err := pipeline.Ingest(ctx, "paper.pdf")
			Expect(err).NotTo(HaveOccurred())

			p, err := reg.Get(ctx, paperID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(paper.StatusReady))
			Expect(p.Title).To(Equal("Sample Paper"))
			Expect(p.Pages).To(Equal(1))
			Expect(p.ModelVersion).To(Equal(embedder.ModelVersion()))

			chunks, err := store.Chunks(ctx, paperID)
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).NotTo(BeEmpty())
			for i, c := range chunks {
				Expect(c.Ordinal).To(Equal(i))
				Expect(c.ID).NotTo(BeEmpty())
				Expect(c.PaperID).To(Equal(paperID))
			}
		})

		It("marks the paper failed with a reason when extraction fails", func() {
			extractor.Err = fmt.Errorf("corrupt xref table")

			paperID, err := pipeline.Ingest(ctx, "broken.pdf")
			Expect(err).To(MatchError(ingest.ErrExtractionFailed))

			p, getErr := reg.Get(ctx, paperID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(paper.StatusFailed))
			Expect(p.FailReason).To(ContainSubstring("corrupt xref"))
			Expect(store.Count(paperID)).To(BeZero())
		})

		It("classifies an unreachable embedding backend", func() {
			extractor.Docs["paper.pdf"] = docOf(longText)
			embedder.Err = fmt.Errorf("connect refused: %w", embeddings.ErrUnavailable)

			paperID, err := pipeline.Ingest(ctx, "paper.pdf")
			Expect(err).To(MatchError(ingest.ErrEmbeddingUnavailable))

			p, _ := reg.Get(ctx, paperID)
			Expect(p.Status).To(Equal(paper.StatusFailed))
			Expect(store.Count(paperID)).To(BeZero())
		})

		It("leaves nothing committed when the store insert fails", func() {
			extractor.Docs["paper.pdf"] = docOf(longText)
			store.InsertErr = fmt.Errorf("disk full")

			paperID, err := pipeline.Ingest(ctx, "paper.pdf")
			Expect(err).To(MatchError(ingest.ErrPartialInsert))

			p, _ := reg.Get(ctx, paperID)
			Expect(p.Status).To(Equal(paper.StatusFailed))
			Expect(store.Count(paperID)).To(BeZero())
		})
	})

	Describe("Reprocess", func() {
		It("re-runs a ready paper after clearing its index", func() {
			extractor.Docs["paper.pdf"] = docOf(longText)
			paperID, err := pipeline.Ingest(ctx, "paper.pdf")
			Expect(err).NotTo(HaveOccurred())
			before := store.Count(paperID)

			Expect(pipeline.Reprocess(ctx, paperID)).To(Succeed())

			p, _ := reg.Get(ctx, paperID)
			Expect(p.Status).To(Equal(paper.StatusReady))
			Expect(store.Count(paperID)).To(Equal(before))
		})

		It("recovers a failed paper once its cause is fixed", func() {
			extractor.Err = fmt.Errorf("transient")
			paperID, _ := pipeline.Ingest(ctx, "paper.pdf")

			extractor.Err = nil
			extractor.Docs["paper.pdf"] = docOf(longText)
			Expect(pipeline.Reprocess(ctx, paperID)).To(Succeed())

			p, _ := reg.Get(ctx, paperID)
			Expect(p.Status).To(Equal(paper.StatusReady))
			Expect(p.FailReason).To(BeEmpty())
		})

		It("keeps the prior status and index when clearing fails", func() {
			extractor.Docs["paper.pdf"] = docOf(longText)
			paperID, err := pipeline.Ingest(ctx, "paper.pdf")
			Expect(err).NotTo(HaveOccurred())
			before := store.Count(paperID)

			store.DeleteErr = fmt.Errorf("database is locked")
			Expect(pipeline.Reprocess(ctx, paperID)).NotTo(Succeed())

			p, _ := reg.Get(ctx, paperID)
			Expect(p.Status).To(Equal(paper.StatusReady))
			Expect(store.Count(paperID)).To(Equal(before))
		})

		It("rejects reprocessing a paper still in processing", func() {
			id := "stuck"
			Expect(reg.Create(ctx, paper.Paper{ID: id, Source: "x.pdf", Status: paper.StatusProcessing})).To(Succeed())
			Expect(pipeline.Reprocess(ctx, id)).NotTo(Succeed())
		})
	})

	Describe("Pool", func() {
		It("commits one paper fully while another fails with nothing committed", func() {
			extractor.Docs["good.pdf"] = docOf(longText)
			// bad.pdf has no doc registered, so extraction fails.

			pool, err := ingest.NewPool(&ingest.PoolConfig{
				Pipeline:   pipeline,
				NumWorkers: 2,
				Logger:     zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(pool.Enqueue(ingest.Job{Path: "good.pdf"})).To(BeTrue())
			Expect(pool.Enqueue(ingest.Job{Path: "bad.pdf"})).To(BeTrue())
			pool.Close()

			results := pool.Results()
			Expect(results).To(HaveLen(2))

			byPath := map[string]ingest.Result{}
			for _, r := range results {
				byPath[r.Path] = r
			}

			good := byPath["good.pdf"]
			Expect(good.Err).NotTo(HaveOccurred())
			Expect(store.Count(good.PaperID)).To(BeNumerically(">", 0))

			bad := byPath["bad.pdf"]
			Expect(bad.Err).To(MatchError(ingest.ErrExtractionFailed))
			Expect(store.Count(bad.PaperID)).To(BeZero())

			p, _ := reg.Get(ctx, bad.PaperID)
			Expect(p.Status).To(Equal(paper.StatusFailed))
		})

		It("aborts in-flight jobs when the pool context is cancelled", func() {
			extractor.Docs["paper.pdf"] = docOf(longText)

			poolCtx, cancel := context.WithCancel(context.Background())
			cancel()

			pool, err := ingest.NewPool(&ingest.PoolConfig{
				Context:    poolCtx,
				Pipeline:   pipeline,
				NumWorkers: 1,
				Logger:     zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(pool.Enqueue(ingest.Job{Path: "paper.pdf"})).To(BeTrue())
			pool.Close()

			results := pool.Results()
			Expect(results).To(HaveLen(1))
			Expect(results[0].Err).To(HaveOccurred())
			Expect(results[0].Err.Error()).To(ContainSubstring(context.Canceled.Error()))
			Expect(store.Count(results[0].PaperID)).To(BeZero())
		})
	})
})
