package sqlitevec_test

import (
	"context"
	"fmt"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/vector"
	"github.com/offprinthq/offprint/pkg/vector/sqlitevec"
)

func item(paperID string, ordinal int, vec []float32) vector.ChunkEmbedding {
	return vector.ChunkEmbedding{
		Chunk: paper.Chunk{
			ID:      fmt.Sprintf("%s-chunk-%d", paperID, ordinal),
			PaperID: paperID,
			Text:    fmt.Sprintf("chunk %d of %s", ordinal, paperID),
			Page:    1,
			Ordinal: ordinal,
			Start:   ordinal * 100,
			End:     ordinal*100 + 80,
		},
		Vector: vec,
	}
}

var _ = Describe("Store", func() {
	var (
		ctx    context.Context
		logger *zap.Logger
		store  *sqlitevec.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = zap.NewNop()

		var err error
		store, err = sqlitevec.NewStore(sqlitevec.Config{
			DBPath:       ":memory:",
			Dimensions:   4,
			ModelVersion: "ollama/nomic-embed-text",
		}, logger)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("NewStore", func() {
		It("requires a database path", func() {
			_, err := sqlitevec.NewStore(sqlitevec.Config{
				Dimensions:   4,
				ModelVersion: "m",
			}, logger)
			Expect(err).To(HaveOccurred())
		})

		It("requires dimensions", func() {
			_, err := sqlitevec.NewStore(sqlitevec.Config{
				DBPath:       ":memory:",
				ModelVersion: "m",
			}, logger)
			Expect(err).To(HaveOccurred())
		})

		It("requires a model version", func() {
			_, err := sqlitevec.NewStore(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Insert and Chunks", func() {
		It("stores chunks retrievable in ordinal order", func() {
			items := []vector.ChunkEmbedding{
				item("p1", 0, []float32{1, 0, 0, 0}),
				item("p1", 1, []float32{0, 1, 0, 0}),
				item("p1", 2, []float32{0, 0, 1, 0}),
			}
			Expect(store.Insert(ctx, "p1", items)).To(Succeed())

			chunks, err := store.Chunks(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(HaveLen(3))
			for i, c := range chunks {
				Expect(c.Ordinal).To(Equal(i))
				Expect(c.PaperID).To(Equal("p1"))
			}
		})

		It("rolls back the whole paper when a vector has the wrong width", func() {
			items := []vector.ChunkEmbedding{
				item("p1", 0, []float32{1, 0, 0, 0}),
				item("p1", 1, []float32{1, 0, 0}), // wrong width
				item("p1", 2, []float32{0, 0, 1, 0}),
			}
			err := store.Insert(ctx, "p1", items)
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))

			_, err = store.Chunks(ctx, "p1")
			Expect(err).To(MatchError(vector.ErrNotFound))
		})

		It("keeps other papers intact when one insert fails", func() {
			ok := []vector.ChunkEmbedding{item("p1", 0, []float32{1, 0, 0, 0})}
			Expect(store.Insert(ctx, "p1", ok)).To(Succeed())

			bad := []vector.ChunkEmbedding{item("p2", 0, []float32{1})}
			Expect(store.Insert(ctx, "p2", bad)).To(MatchError(vector.ErrDimensionMismatch))

			chunks, err := store.Chunks(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(HaveLen(1))
		})
	})

	Describe("Delete", func() {
		It("removes every chunk and vector for the paper", func() {
			items := []vector.ChunkEmbedding{
				item("p1", 0, []float32{1, 0, 0, 0}),
				item("p1", 1, []float32{0, 1, 0, 0}),
			}
			Expect(store.Insert(ctx, "p1", items)).To(Succeed())
			Expect(store.Delete(ctx, "p1")).To(Succeed())

			_, err := store.Chunks(ctx, "p1")
			Expect(err).To(MatchError(vector.ErrNotFound))
			_, err = store.Vectors(ctx, "p1")
			Expect(err).To(MatchError(vector.ErrNotFound))
		})

		It("is a no-op for an unknown paper", func() {
			Expect(store.Delete(ctx, "nope")).To(Succeed())
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			Expect(store.Insert(ctx, "p1", []vector.ChunkEmbedding{
				item("p1", 0, []float32{1, 0, 0, 0}),
				item("p1", 1, []float32{0.9, 0.1, 0, 0}),
				item("p1", 2, []float32{0, 1, 0, 0}),
			})).To(Succeed())
			Expect(store.Insert(ctx, "p2", []vector.ChunkEmbedding{
				item("p2", 0, []float32{1, 0, 0, 0}),
			})).To(Succeed())
		})

		It("returns at most topK hits ordered by score", func() {
			results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 2, vector.SearchOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(len(results)).To(BeNumerically("<=", 2))
			for i := 1; i < len(results); i++ {
				Expect(results[i-1].Score).To(BeNumerically(">=", results[i].Score))
			}
		})

		It("restricts hits to one paper with the partition filter", func() {
			results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 10, vector.SearchOptions{PaperID: "p2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).NotTo(BeEmpty())
			for _, r := range results {
				Expect(r.PaperID).To(Equal("p2"))
			}
		})

		It("drops hits below the score threshold", func() {
			results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 10, vector.SearchOptions{
				PaperID:  "p1",
				MinScore: 0.5,
			})
			Expect(err).NotTo(HaveOccurred())
			for _, r := range results {
				Expect(r.Score).To(BeNumerically(">=", 0.5))
			}
			// The orthogonal chunk scores ~0 and must not appear.
			for _, r := range results {
				Expect(r.Ordinal).NotTo(Equal(2))
			}
		})

		It("rejects a query of the wrong width", func() {
			_, err := store.Search(ctx, []float32{1, 0}, 5, vector.SearchOptions{})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("Vectors", func() {
		It("round-trips vectors in ordinal order", func() {
			in := []vector.ChunkEmbedding{
				item("p1", 0, []float32{0.25, 0.5, 0.75, 1}),
				item("p1", 1, []float32{1, 0.75, 0.5, 0.25}),
			}
			Expect(store.Insert(ctx, "p1", in)).To(Succeed())

			vecs, err := store.Vectors(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(vecs).To(HaveLen(2))
			Expect(vecs[0]).To(Equal([]float32{0.25, 0.5, 0.75, 1}))
			Expect(vecs[1]).To(Equal([]float32{1, 0.75, 0.5, 0.25}))
		})
	})

	Describe("model version", func() {
		It("refuses to search an index built with a different model", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "vectors.db")

			first, err := sqlitevec.NewStore(sqlitevec.Config{
				DBPath:       dbPath,
				Dimensions:   4,
				ModelVersion: "ollama/nomic-embed-text",
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Insert(ctx, "p1", []vector.ChunkEmbedding{
				item("p1", 0, []float32{1, 0, 0, 0}),
			})).To(Succeed())
			Expect(first.Close()).To(Succeed())

			second, err := sqlitevec.NewStore(sqlitevec.Config{
				DBPath:       dbPath,
				Dimensions:   4,
				ModelVersion: "ollama/all-minilm",
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			_, err = second.Search(ctx, []float32{1, 0, 0, 0}, 5, vector.SearchOptions{})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("refuses to extend an index built with a different model", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "vectors.db")

			first, err := sqlitevec.NewStore(sqlitevec.Config{
				DBPath:       dbPath,
				Dimensions:   4,
				ModelVersion: "ollama/nomic-embed-text",
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Insert(ctx, "p1", []vector.ChunkEmbedding{
				item("p1", 0, []float32{1, 0, 0, 0}),
			})).To(Succeed())
			Expect(first.Close()).To(Succeed())

			second, err := sqlitevec.NewStore(sqlitevec.Config{
				DBPath:       dbPath,
				Dimensions:   4,
				ModelVersion: "ollama/all-minilm",
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			err = second.Insert(ctx, "p2", []vector.ChunkEmbedding{
				item("p2", 0, []float32{0, 1, 0, 0}),
			})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))

			// Nothing from the refused batch may reach the index.
			chunks, err := second.Chunks(ctx, "p2")
			Expect(err).To(MatchError(vector.ErrNotFound))
			Expect(chunks).To(BeEmpty())
		})
	})
})
