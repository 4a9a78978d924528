package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent offprint configuration stored as
// config.toml in the .offprint/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	Chunking    ChunkingConfig    `toml:"chunking"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Ingest      IngestConfig      `toml:"ingest"`
	Arxiv       ArxivConfig       `toml:"arxiv"`
}

// StorageConfig holds the paper registry and conversation log database.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// VectorStoreConfig holds chunk/vector index settings.
type VectorStoreConfig struct {
	Provider string `toml:"provider,omitempty"`
	Path     string `toml:"path,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
	BatchSize  int    `toml:"batch_size,omitempty"`
	CacheSize  int    `toml:"cache_size,omitempty"`
}

// LLMConfig holds generation provider settings.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// ChunkingConfig holds the sliding-window chunker settings.
type ChunkingConfig struct {
	MaxChars          int `toml:"max_chars,omitempty"`
	OverlapChars      int `toml:"overlap_chars,omitempty"`
	BoundaryTolerance int `toml:"boundary_tolerance,omitempty"`
}

// RetrievalConfig holds retrieval defaults.
type RetrievalConfig struct {
	TopK     int     `toml:"top_k,omitempty"`
	MinScore float64 `toml:"min_score,omitempty"`
}

// IngestConfig holds ingestion worker pool settings.
type IngestConfig struct {
	Workers    uint `toml:"workers,omitempty"`
	QueueSize  uint `toml:"queue_size,omitempty"`
	MaxRetries uint `toml:"max_retries,omitempty"`
}

// ArxivConfig holds arXiv collaborator settings.
type ArxivConfig struct {
	BaseURL       string `toml:"base_url,omitempty"`
	CandidatePool int    `toml:"candidate_pool,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter
// on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.path": {
		get: func(c *Config) string { return c.VectorStore.Path },
		set: func(c *Config, v string) error { c.VectorStore.Path = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"embedding.batch_size": {
		get: func(c *Config) string {
			if c.Embedding.BatchSize == 0 {
				return ""
			}
			return strconv.Itoa(c.Embedding.BatchSize)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.batch_size: %w", err)
			}
			c.Embedding.BatchSize = n
			return nil
		},
	},
	"embedding.cache_size": {
		get: func(c *Config) string {
			if c.Embedding.CacheSize == 0 {
				return ""
			}
			return strconv.Itoa(c.Embedding.CacheSize)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.cache_size: %w", err)
			}
			c.Embedding.CacheSize = n
			return nil
		},
	},
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.target": {
		get: func(c *Config) string { return c.LLM.Target },
		set: func(c *Config, v string) error { c.LLM.Target = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"chunking.max_chars": {
		get: func(c *Config) string {
			if c.Chunking.MaxChars == 0 {
				return ""
			}
			return strconv.Itoa(c.Chunking.MaxChars)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for chunking.max_chars: %w", err)
			}
			c.Chunking.MaxChars = n
			return nil
		},
	},
	"chunking.overlap_chars": {
		get: func(c *Config) string {
			if c.Chunking.OverlapChars == 0 {
				return ""
			}
			return strconv.Itoa(c.Chunking.OverlapChars)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for chunking.overlap_chars: %w", err)
			}
			c.Chunking.OverlapChars = n
			return nil
		},
	},
	"chunking.boundary_tolerance": {
		get: func(c *Config) string {
			if c.Chunking.BoundaryTolerance == 0 {
				return ""
			}
			return strconv.Itoa(c.Chunking.BoundaryTolerance)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for chunking.boundary_tolerance: %w", err)
			}
			c.Chunking.BoundaryTolerance = n
			return nil
		},
	},
	"retrieval.top_k": {
		get: func(c *Config) string {
			if c.Retrieval.TopK == 0 {
				return ""
			}
			return strconv.Itoa(c.Retrieval.TopK)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.top_k: %w", err)
			}
			c.Retrieval.TopK = n
			return nil
		},
	},
	"retrieval.min_score": {
		get: func(c *Config) string {
			if c.Retrieval.MinScore == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Retrieval.MinScore, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.min_score: %w", err)
			}
			c.Retrieval.MinScore = f
			return nil
		},
	},
	"ingest.workers": {
		get: func(c *Config) string {
			if c.Ingest.Workers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Ingest.Workers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for ingest.workers: %w", err)
			}
			c.Ingest.Workers = uint(n)
			return nil
		},
	},
	"ingest.queue_size": {
		get: func(c *Config) string {
			if c.Ingest.QueueSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Ingest.QueueSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for ingest.queue_size: %w", err)
			}
			c.Ingest.QueueSize = uint(n)
			return nil
		},
	},
	"ingest.max_retries": {
		get: func(c *Config) string {
			if c.Ingest.MaxRetries == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Ingest.MaxRetries), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for ingest.max_retries: %w", err)
			}
			c.Ingest.MaxRetries = uint(n)
			return nil
		},
	},
	"arxiv.base_url": {
		get: func(c *Config) string { return c.Arxiv.BaseURL },
		set: func(c *Config, v string) error { c.Arxiv.BaseURL = v; return nil },
	},
	"arxiv.candidate_pool": {
		get: func(c *Config) string {
			if c.Arxiv.CandidatePool == 0 {
				return ""
			}
			return strconv.Itoa(c.Arxiv.CandidatePool)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for arxiv.candidate_pool: %w", err)
			}
			c.Arxiv.CandidatePool = n
			return nil
		},
	},
}

// GetKey returns the string value of a dotted config key.
func (c *Config) GetKey(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return info.get(c), nil
}

// SetKey sets a dotted config key from its string representation.
func (c *Config) SetKey(key, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	return info.set(c, value)
}
