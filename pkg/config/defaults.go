package config

const (
	defaultOllamaTarget = "http://localhost:11434"

	defaultVectorProvider = "sqlitevec"

	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768
	defaultEmbeddingBatchSize  = 32
	defaultEmbeddingCacheSize  = 4096

	defaultLLMModel = "qwen2.5:7b"

	defaultMaxChars          = 500
	defaultOverlapChars      = 50
	defaultBoundaryTolerance = 100

	defaultTopK     = 5
	defaultMinScore = 0.25

	defaultIngestWorkers   = 3
	defaultIngestQueueSize = 64
	defaultIngestRetries   = 3

	defaultArxivBaseURL  = "https://export.arxiv.org/api/query"
	defaultCandidatePool = 20
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Target:     defaultOllamaTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
			BatchSize:  defaultEmbeddingBatchSize,
			CacheSize:  defaultEmbeddingCacheSize,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Target:   defaultOllamaTarget,
			Model:    defaultLLMModel,
		},
		Chunking: ChunkingConfig{
			MaxChars:          defaultMaxChars,
			OverlapChars:      defaultOverlapChars,
			BoundaryTolerance: defaultBoundaryTolerance,
		},
		Retrieval: RetrievalConfig{
			TopK:     defaultTopK,
			MinScore: defaultMinScore,
		},
		Ingest: IngestConfig{
			Workers:    defaultIngestWorkers,
			QueueSize:  defaultIngestQueueSize,
			MaxRetries: defaultIngestRetries,
		},
		Arxiv: ArxivConfig{
			BaseURL:       defaultArxivBaseURL,
			CandidatePool: defaultCandidatePool,
		},
	}
}
