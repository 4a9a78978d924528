// Package llmutils is the llm utility package
package llmutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/llm"
	"github.com/offprinthq/offprint/pkg/llm/ollama"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	MaxRetries   uint
	Logger       *zap.Logger
}

func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewGenerator(ollama.Config{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			MaxRetries: o.MaxRetries,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", o.ProviderType)
	}
}
