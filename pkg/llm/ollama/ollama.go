// Package ollama implements pkg/llm's Generator against Ollama's
// generate API.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/llm"
)

const (
	// DefaultModel is the default generation model.
	DefaultModel = "qwen2.5:7b"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Generator wraps Ollama's generate API.
type Generator struct {
	baseURL    string
	model      string
	maxRetries uint64
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model. Defaults to DefaultModel if empty.
	Model string

	// MaxRetries bounds the retry loop before the first token.
	MaxRetries uint
}

// generateRequest is the request body for Ollama's generate API.
type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// streamChunk is one NDJSON line of Ollama's streamed response.
type streamChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewGenerator creates a new generator using Ollama's generate API.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL:    baseURL,
		model:      model,
		maxRetries: uint64(cfg.MaxRetries),
		httpClient: &http.Client{
			// LLM responses can be slow
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}, nil
}

// Generate opens the stream, retrying transient connection failures with
// bounded backoff before the first token. Once the stream is open, tokens
// flow on the returned channel until Done, an error, or ctx cancellation.
func (g *Generator) Generate(ctx context.Context, req llm.Request) (<-chan llm.Token, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.model,
		System: req.System,
		Prompt: req.Prompt,
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var resp *http.Response
	op := func() error {
		var err error
		resp, err = g.open(ctx, body)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.maxRetries),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}

	tokens := make(chan llm.Token)
	go g.stream(ctx, resp, tokens)
	return tokens, nil
}

func (g *Generator) open(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", llm.ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		err := fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrUnavailable, resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return resp, nil
}

// stream reads NDJSON chunks off the response body and forwards them as
// tokens. The channel always closes after a Done or Err token.
func (g *Generator) stream(ctx context.Context, resp *http.Response, tokens chan<- llm.Token) {
	defer close(tokens)
	defer resp.Body.Close()

	emit := func(t llm.Token) bool {
		select {
		case tokens <- t:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			emit(llm.Token{Err: fmt.Errorf("%w: %v", llm.ErrCancelled, err)})
			return
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			g.logger.Debug("failed to parse stream chunk",
				zap.Error(err),
				zap.String("line", string(line)),
			)
			continue
		}

		if chunk.Response != "" {
			if !emit(llm.Token{Text: chunk.Response}) {
				return
			}
		}

		if chunk.Done {
			emit(llm.Token{Done: true})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			emit(llm.Token{Err: fmt.Errorf("%w: %v", llm.ErrCancelled, err)})
			return
		}
		emit(llm.Token{Err: fmt.Errorf("%w: reading stream: %v", llm.ErrUnavailable, err)})
		return
	}

	// Stream ended without a done chunk.
	emit(llm.Token{Err: fmt.Errorf("%w: stream ended early", llm.ErrUnavailable)})
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)
