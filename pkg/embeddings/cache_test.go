package embeddings_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/offprinthq/offprint/pkg/embeddings"
	testutils "github.com/offprinthq/offprint/pkg/utils/test"
)

var _ = Describe("Cached", func() {
	var (
		ctx   context.Context
		inner *testutils.MockEmbedder
	)

	BeforeEach(func() {
		ctx = context.Background()
		inner = testutils.NewMockEmbedder()
		inner.Embeddings["alpha"] = []float32{1, 0, 0, 0}
		inner.Embeddings["beta"] = []float32{0, 1, 0, 0}
		inner.Embeddings["gamma"] = []float32{0, 0, 1, 0}
	})

	It("never re-embeds identical text", func() {
		cached := embeddings.NewCached(inner, 16)

		first, err := cached.Embed(ctx, []string{"alpha", "beta"})
		Expect(err).NotTo(HaveOccurred())

		second, err := cached.Embed(ctx, []string{"alpha", "beta"})
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		// Only the first call reached the backend.
		Expect(inner.Calls()).To(HaveLen(1))
	})

	It("forwards only the misses, preserving result order", func() {
		cached := embeddings.NewCached(inner, 16)

		_, err := cached.Embed(ctx, []string{"alpha"})
		Expect(err).NotTo(HaveOccurred())

		out, err := cached.Embed(ctx, []string{"beta", "alpha", "gamma"})
		Expect(err).NotTo(HaveOccurred())
		Expect(out[0]).To(Equal([]float32{0, 1, 0, 0}))
		Expect(out[1]).To(Equal([]float32{1, 0, 0, 0}))
		Expect(out[2]).To(Equal([]float32{0, 0, 1, 0}))

		calls := inner.Calls()
		Expect(calls).To(HaveLen(2))
		Expect(calls[1]).To(Equal([]string{"beta", "gamma"}))
	})

	It("evicts the least recently used entry at capacity", func() {
		cached := embeddings.NewCached(inner, 2)

		_, err := cached.Embed(ctx, []string{"alpha", "beta"})
		Expect(err).NotTo(HaveOccurred())

		// Touch alpha so beta becomes the eviction candidate.
		_, err = cached.Embed(ctx, []string{"alpha"})
		Expect(err).NotTo(HaveOccurred())

		_, err = cached.Embed(ctx, []string{"gamma"})
		Expect(err).NotTo(HaveOccurred())

		_, err = cached.Embed(ctx, []string{"alpha", "beta"})
		Expect(err).NotTo(HaveOccurred())

		// beta was evicted and had to be re-embedded; alpha was not.
		last := inner.Calls()[len(inner.Calls())-1]
		Expect(last).To(Equal([]string{"beta"}))
	})

	It("returns the inner embedder unchanged when caching is disabled", func() {
		Expect(embeddings.NewCached(inner, 0)).To(BeIdenticalTo(inner))
	})
})
