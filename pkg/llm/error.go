package llm

import "errors"

var (
	// ErrUnavailable indicates the generation backend could not be
	// reached or refused the request after retries.
	ErrUnavailable = errors.New("generation backend unavailable")

	// ErrCancelled indicates the stream ended because its context was
	// cancelled. Partial output is not an answer.
	ErrCancelled = errors.New("generation cancelled")
)
