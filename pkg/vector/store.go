// Package vector provides interfaces and implementations for durable
// chunk and embedding storage with similarity search.
package vector

import (
	"context"

	"github.com/offprinthq/offprint/pkg/paper"
)

// ChunkEmbedding pairs a chunk with its embedding vector.
type ChunkEmbedding struct {
	Chunk  paper.Chunk
	Vector []float32
}

// SearchOptions narrows a similarity search.
type SearchOptions struct {
	// PaperID restricts hits to a single paper when non-empty.
	PaperID string

	// MinScore drops hits scoring below the threshold. Zero keeps
	// everything.
	MinScore float64
}

// Store handles durable storage and retrieval of paper chunks and their
// embeddings.
type Store interface {
	// Insert stores all chunks and vectors for a paper atomically.
	// Either every chunk of the paper becomes visible or none do.
	Insert(ctx context.Context, paperID string, items []ChunkEmbedding) error

	// Delete removes every chunk and embedding belonging to the paper.
	Delete(ctx context.Context, paperID string) error

	// Search finds the chunks most similar to the query embedding,
	// ordered score descending then ordinal ascending, at most topK.
	Search(ctx context.Context, embedding []float32, topK int, opts SearchOptions) ([]paper.SearchResult, error)

	// Chunks returns a paper's chunks in ordinal order.
	Chunks(ctx context.Context, paperID string) ([]paper.Chunk, error)

	// Vectors returns a paper's embedding vectors in ordinal order.
	Vectors(ctx context.Context, paperID string) ([][]float32, error)

	// Close releases any resources held by the store.
	Close() error
}
