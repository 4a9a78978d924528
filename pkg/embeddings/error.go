package embeddings

import "errors"

var (
	// ErrUnavailable indicates the embedding backend could not be
	// reached or refused the request after retries.
	ErrUnavailable = errors.New("embedding backend unavailable")

	// ErrDimensionMismatch indicates the backend returned vectors of an
	// unexpected width.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
