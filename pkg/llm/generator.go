// Package llm defines the text generation capability used for answers,
// translations, and simplifications.
package llm

import "context"

// Token is one increment of a streamed generation.
type Token struct {
	// Text is the token content. Empty on the final Done token.
	Text string

	// Done marks the end of a successful stream.
	Done bool

	// Err carries a mid-stream failure. The channel closes after an
	// Err token; partial output before it must not be treated as an
	// answer.
	Err error
}

// Request is a single generation request.
type Request struct {
	// System primes the model's behavior for the whole exchange.
	System string

	// Prompt is the user-visible request, including any grounding
	// context.
	Prompt string
}

// Generator streams text completions.
type Generator interface {
	// Generate starts a streamed completion. The returned channel
	// yields tokens until a Done or Err token, after which it closes.
	// Cancelling ctx stops the stream promptly.
	Generate(ctx context.Context, req Request) (<-chan Token, error)

	// Close releases any resources held by the generator.
	Close() error
}
