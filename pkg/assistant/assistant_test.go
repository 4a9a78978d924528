package assistant_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/assistant"
	"github.com/offprinthq/offprint/pkg/llm"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/retriever"
	testutils "github.com/offprinthq/offprint/pkg/utils/test"
)

// fixedRetriever returns a canned result set.
type fixedRetriever struct {
	results []paper.SearchResult
	err     error
}

func (f *fixedRetriever) Retrieve(_ context.Context, _ string, _ retriever.Options) ([]paper.SearchResult, error) {
	return f.results, f.err
}

func drain(tokens <-chan llm.Token) (string, llm.Token) {
	var b strings.Builder
	var last llm.Token
	for t := range tokens {
		last = t
		b.WriteString(t.Text)
	}
	return b.String(), last
}

var _ = Describe("Assistant", func() {
	var (
		ctx       context.Context
		generator *testutils.MockGenerator
		sessions  *testutils.MockSessionStore
		hits      *fixedRetriever
		a         *assistant.Assistant
	)

	BeforeEach(func() {
		ctx = context.Background()
		generator = testutils.NewMockGenerator("The answer", " is 42.")
		sessions = testutils.NewMockSessionStore()
		hits = &fixedRetriever{results: []paper.SearchResult{
			{ChunkID: "c1", PaperID: "p1", Ordinal: 0, Page: 3, Score: 0.9, Text: "relevant passage"},
			{ChunkID: "c2", PaperID: "p1", Ordinal: 4, Page: 7, Score: 0.6, Text: "another passage"},
		}}
		a = assistant.New(hits, generator, sessions, assistant.Config{TopK: 5, MinScore: 0.25}, zap.NewNop())
	})

	Describe("Ask", func() {
		It("streams a grounded answer and logs the turn with citations", func() {
			tokens, err := a.Ask(ctx, "s1", "p1", "what is the answer?")
			Expect(err).NotTo(HaveOccurred())

			answer, last := drain(tokens)
			Expect(answer).To(Equal("The answer is 42."))
			Expect(last.Done).To(BeTrue())

			Eventually(func() int {
				turns, _ := sessions.Turns(ctx, "s1")
				return len(turns)
			}).Should(Equal(1))

			turns, err := sessions.Turns(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns[0].Question).To(Equal("what is the answer?"))
			Expect(turns[0].Answer).To(Equal("The answer is 42."))
			Expect(turns[0].Citations).To(HaveLen(2))
			Expect(turns[0].Citations[0].ChunkID).To(Equal("c1"))
			Expect(turns[0].Citations[0].Page).To(Equal(3))
		})

		It("numbers context excerpts with their pages in the prompt", func() {
			tokens, err := a.Ask(ctx, "s1", "p1", "q")
			Expect(err).NotTo(HaveOccurred())
			drain(tokens)

			prompt := generator.LastPrompt()
			Expect(prompt).To(ContainSubstring("[1] (page 3)\nrelevant passage"))
			Expect(prompt).To(ContainSubstring("[2] (page 7)\nanother passage"))
			Expect(prompt).To(ContainSubstring("Question: q"))
		})

		It("fails with NoContext and never invokes the generator when nothing qualifies", func() {
			hits.results = nil

			_, err := a.Ask(ctx, "s1", "p1", "unanswerable")
			Expect(err).To(MatchError(retriever.ErrNoContext))
			Expect(generator.CallCount()).To(BeZero())
		})

		It("does not log a turn when the stream fails mid-way", func() {
			generator.StreamErr = llm.ErrUnavailable

			tokens, err := a.Ask(ctx, "s1", "p1", "q")
			Expect(err).NotTo(HaveOccurred())
			_, last := drain(tokens)
			Expect(last.Err).To(MatchError(llm.ErrUnavailable))

			Consistently(func() int {
				turns, _ := sessions.Turns(ctx, "s1")
				return len(turns)
			}, 200*time.Millisecond).Should(BeZero())
		})
	})

	Describe("Translate", func() {
		It("rejects unsupported languages without calling the generator", func() {
			_, err := a.Translate(ctx, "s1", "some text", "klingon")
			Expect(err).To(MatchError(assistant.ErrUnsupportedLanguage))
			Expect(generator.CallCount()).To(BeZero())
		})

		It("accepts supported languages case-insensitively", func() {
			tokens, err := a.Translate(ctx, "s1", "attention mechanism", "Hindi")
			Expect(err).NotTo(HaveOccurred())

			answer, last := drain(tokens)
			Expect(answer).To(Equal("The answer is 42."))
			Expect(last.Done).To(BeTrue())
			Expect(generator.LastPrompt()).To(ContainSubstring("attention mechanism"))
		})
	})

	Describe("Simplify", func() {
		It("streams a rewrite of the literal span", func() {
			tokens, err := a.Simplify(ctx, "s1", "stochastic gradient descent")
			Expect(err).NotTo(HaveOccurred())

			_, last := drain(tokens)
			Expect(last.Done).To(BeTrue())
			Expect(generator.LastPrompt()).To(ContainSubstring("stochastic gradient descent"))
		})
	})

	Describe("single-flight", func() {
		It("cancels the in-flight stream when the session issues a new request", func() {
			generator.Block = make(chan struct{})

			first, err := a.Ask(ctx, "s1", "p1", "first question")
			Expect(err).NotTo(HaveOccurred())

			// Second request for the same session supersedes the first.
			second, err := a.Ask(ctx, "s1", "p1", "second question")
			Expect(err).NotTo(HaveOccurred())

			Eventually(first, 5*time.Second).Should(BeClosed())

			close(generator.Block)
			answer, last := drain(second)
			Expect(answer).To(Equal("The answer is 42."))
			Expect(last.Done).To(BeTrue())

			// Only the completed second turn is logged.
			Eventually(func() int {
				turns, _ := sessions.Turns(ctx, "s1")
				return len(turns)
			}).Should(Equal(1))
			turns, _ := sessions.Turns(ctx, "s1")
			Expect(turns[0].Question).To(Equal("second question"))
		})
	})
})
