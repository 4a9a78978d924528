package ingest

import "errors"

var (
	// ErrExtractionFailed indicates the paper produced no usable text.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding backend stayed
	// unreachable through retries.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")

	// ErrPartialInsert indicates the store rejected the paper's chunks;
	// the transaction rolled back and nothing was committed.
	ErrPartialInsert = errors.New("chunk insert failed")
)
