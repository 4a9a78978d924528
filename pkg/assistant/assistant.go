// Package assistant orchestrates retrieval, prompt assembly, and
// streamed generation for questions, translations, and simplifications.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/llm"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/retriever"
	"github.com/offprinthq/offprint/pkg/session"
)

// ContextRetriever supplies ranked context chunks for grounding.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, opts retriever.Options) ([]paper.SearchResult, error)
}

// Config tunes retrieval for Ask.
type Config struct {
	// TopK is how many context chunks ground an answer.
	TopK int

	// MinScore is the relevance threshold below which chunks are not
	// used as context.
	MinScore float64
}

// Assistant answers questions grounded in indexed papers and performs
// span translations and simplifications.
type Assistant struct {
	retriever ContextRetriever
	generator llm.Generator
	sessions  session.Store
	cfg       Config
	logger    *zap.Logger

	// One in-flight generation per session. A new request cancels and
	// replaces the previous one.
	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	cancel context.CancelFunc
}

func New(r ContextRetriever, g llm.Generator, s session.Store, cfg Config, logger *zap.Logger) *Assistant {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &Assistant{
		retriever: r,
		generator: g,
		sessions:  s,
		cfg:       cfg,
		logger:    logger,
		inflight:  make(map[string]*flight),
	}
}

// Ask retrieves context for the question and streams a grounded answer.
// Zero qualifying chunks is retriever.ErrNoContext and the generator is
// never invoked. On successful completion the turn is appended to the
// session log with its citations.
func (a *Assistant) Ask(ctx context.Context, sessionID, paperID, question string) (<-chan llm.Token, error) {
	results, err := a.retriever.Retrieve(ctx, question, retriever.Options{
		PaperID:  paperID,
		K:        a.cfg.TopK,
		MinScore: a.cfg.MinScore,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: question %q", retriever.ErrNoContext, question)
	}

	citations := make([]paper.Citation, len(results))
	for i, r := range results {
		citations[i] = paper.Citation{ChunkID: r.ChunkID, Page: r.Page, Score: r.Score}
	}

	req := llm.Request{System: askSystem, Prompt: askPrompt(question, results)}
	return a.generate(ctx, sessionID, paperID, question, citations, req)
}

// Translate streams a translation of the literal text span. No
// retrieval is involved. An unsupported target language fails before
// any generation call.
func (a *Assistant) Translate(ctx context.Context, sessionID, text, lang string) (<-chan llm.Token, error) {
	if !SupportedLanguage(lang) {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedLanguage, lang, strings.Join(SupportedLanguages(), ", "))
	}

	req := llm.Request{System: translateSystem, Prompt: translatePrompt(text, lang)}
	question := fmt.Sprintf("translate to %s: %s", lang, text)
	return a.generate(ctx, sessionID, "", question, nil, req)
}

// Simplify streams a plain-language rewrite of the literal text span.
func (a *Assistant) Simplify(ctx context.Context, sessionID, text string) (<-chan llm.Token, error) {
	req := llm.Request{System: simplifySystem, Prompt: simplifyPrompt(text)}
	question := "simplify: " + text
	return a.generate(ctx, sessionID, "", question, nil, req)
}

// generate starts a single-flight stream for the session, forwarding
// tokens and logging the turn when the stream completes.
func (a *Assistant) generate(ctx context.Context, sessionID, paperID, question string, citations []paper.Citation, req llm.Request) (<-chan llm.Token, error) {
	genCtx, f := a.claim(ctx, sessionID)

	tokens, err := a.generator.Generate(genCtx, req)
	if err != nil {
		a.release(sessionID, f)
		f.cancel()
		return nil, fmt.Errorf("starting generation: %w", err)
	}

	out := make(chan llm.Token)
	go func() {
		defer close(out)
		defer a.release(sessionID, f)
		defer f.cancel()

		var answer strings.Builder
		for token := range tokens {
			select {
			case out <- token:
			case <-genCtx.Done():
				return
			}

			switch {
			case token.Err != nil:
				// Partial output is discarded, never logged.
				return
			case token.Done:
				a.record(sessionID, paperID, question, answer.String(), citations)
				return
			default:
				answer.WriteString(token.Text)
			}
		}
	}()
	return out, nil
}

// claim cancels any in-flight generation for the session and registers
// a new one.
func (a *Assistant) claim(ctx context.Context, sessionID string) (context.Context, *flight) {
	genCtx, cancel := context.WithCancel(ctx)
	f := &flight{cancel: cancel}

	a.mu.Lock()
	if prev, ok := a.inflight[sessionID]; ok {
		prev.cancel()
		a.logger.Debug("superseded in-flight generation", zap.String("session_id", sessionID))
	}
	a.inflight[sessionID] = f
	a.mu.Unlock()

	return genCtx, f
}

// release clears the session slot if it still belongs to this request,
// so a superseding request's slot survives.
func (a *Assistant) release(sessionID string, f *flight) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight[sessionID] == f {
		delete(a.inflight, sessionID)
	}
}

func (a *Assistant) record(sessionID, paperID, question, answer string, citations []paper.Citation) {
	err := a.sessions.Append(context.Background(), sessionID, paperID, paper.Turn{
		Question:  question,
		Answer:    answer,
		Citations: citations,
	})
	if err != nil {
		a.logger.Warn("failed to log turn",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
