// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts a batch of texts into vector embeddings, one per
	// input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelVersion identifies the embedding model. Vectors from
	// different model versions are not comparable.
	ModelVersion() string

	// Dimensions is the width of vectors this embedder produces.
	Dimensions() int

	// Close releases any resources held by the embedder.
	Close() error
}
