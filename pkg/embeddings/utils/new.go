// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/offprinthq/offprint/pkg/embeddings"
	"github.com/offprinthq/offprint/pkg/embeddings/ollama"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimensions   int
	BatchSize    int
	CacheSize    int
	MaxRetries   uint
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	var (
		inner embeddings.Embedder
		err   error
	)

	switch o.ProviderType {
	case "ollama":
		inner, err = ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
			BatchSize:  o.BatchSize,
			MaxRetries: o.MaxRetries,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
	if err != nil {
		return nil, err
	}

	return embeddings.NewCached(inner, o.CacheSize), nil
}
