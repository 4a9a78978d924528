package ollama_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/llm"
	"github.com/offprinthq/offprint/pkg/llm/ollama"
)

func newGenerator(url string) *ollama.Generator {
	g, err := ollama.NewGenerator(ollama.Config{
		BaseURL: url,
		Model:   "test-model",
	}, zap.NewNop())
	Expect(err).NotTo(HaveOccurred())
	return g
}

func collect(tokens <-chan llm.Token) (string, llm.Token) {
	var b strings.Builder
	var last llm.Token
	for t := range tokens {
		last = t
		b.WriteString(t.Text)
	}
	return b.String(), last
}

var _ = Describe("Generator", func() {
	It("streams NDJSON chunks as tokens ending with done", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/generate"))
			flusher := w.(http.Flusher)
			for _, word := range []string{"attention", " is", " all"} {
				fmt.Fprintf(w, `{"response":%q,"done":false}`+"\n", word)
				flusher.Flush()
			}
			fmt.Fprintln(w, `{"response":"","done":true}`)
		}))
		defer server.Close()

		g := newGenerator(server.URL)
		tokens, err := g.Generate(context.Background(), llm.Request{Prompt: "q"})
		Expect(err).NotTo(HaveOccurred())

		text, last := collect(tokens)
		Expect(text).To(Equal("attention is all"))
		Expect(last.Done).To(BeTrue())
		Expect(last.Err).NotTo(HaveOccurred())
	})

	It("returns ErrUnavailable without streaming when the backend refuses", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		g := newGenerator(server.URL)
		_, err := g.Generate(context.Background(), llm.Request{Prompt: "q"})
		Expect(err).To(MatchError(llm.ErrUnavailable))
	})

	It("surfaces cancellation mid-stream", func() {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			fmt.Fprintln(w, `{"response":"partial","done":false}`)
			flusher.Flush()
			<-release
		}))
		defer server.Close()
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		g := newGenerator(server.URL)
		tokens, err := g.Generate(ctx, llm.Request{Prompt: "q"})
		Expect(err).NotTo(HaveOccurred())

		Eventually(tokens).Should(Receive(WithTransform(func(t llm.Token) string {
			return t.Text
		}, Equal("partial"))))

		cancel()

		Eventually(tokens, 5*time.Second).Should(BeClosed())
	})

	It("flags a stream that ends without a done chunk", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"response":"half","done":false}`)
		}))
		defer server.Close()

		g := newGenerator(server.URL)
		tokens, err := g.Generate(context.Background(), llm.Request{Prompt: "q"})
		Expect(err).NotTo(HaveOccurred())

		_, last := collect(tokens)
		Expect(last.Err).To(MatchError(llm.ErrUnavailable))
	})
})
