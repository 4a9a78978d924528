// Package wiring resolves configuration and builds the collaborators
// offprint commands share: the registry database, the chunk index, and
// the Ollama-backed embedder and generator.
package wiring

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/chunker"
	"github.com/offprinthq/offprint/pkg/config"
	"github.com/offprinthq/offprint/pkg/embeddings"
	embeddingutils "github.com/offprinthq/offprint/pkg/embeddings/utils"
	"github.com/offprinthq/offprint/pkg/llm"
	llmutils "github.com/offprinthq/offprint/pkg/llm/utils"
	"github.com/offprinthq/offprint/pkg/logger"
	"github.com/offprinthq/offprint/pkg/registry"
	"github.com/offprinthq/offprint/pkg/session"
	"github.com/offprinthq/offprint/pkg/vector"
	vectorutils "github.com/offprinthq/offprint/pkg/vector/utils"
)

const (
	registryFile = "offprint.db"
	vectorsFile  = "vectors.db"
)

// Runtime holds lazily-built collaborators for one command invocation.
// Call Close when the command is done.
type Runtime struct {
	Cfg    *config.Config
	Cfger  *config.Configer
	Logger *zap.Logger

	db        *sql.DB
	reg       *registry.Registry
	sessions  *session.SQLiteStore
	embedder  embeddings.Embedder
	store     vector.Store
	generator llm.Generator
}

// NewRuntime reads the global --debug and --config-dir flags and loads
// the resolved configuration.
func NewRuntime(cmd *cobra.Command) (*Runtime, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	configDir, _ := cmd.Flags().GetString("config-dir")

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &Runtime{
		Cfg:    cfg,
		Cfger:  cfger,
		Logger: logger.NewLogger(debug),
	}, nil
}

// SQLitePath returns the path to the registry and conversation database.
func (r *Runtime) SQLitePath() string {
	if r.Cfg.Storage.SQLitePath != "" {
		return r.Cfg.Storage.SQLitePath
	}
	if dir := r.Cfger.StateDir(); dir != "" {
		return filepath.Join(dir, registryFile)
	}
	return registryFile
}

// VectorPath returns the path to the chunk index database.
func (r *Runtime) VectorPath() string {
	if r.Cfg.VectorStore.Path != "" {
		return r.Cfg.VectorStore.Path
	}
	if dir := r.Cfger.StateDir(); dir != "" {
		return filepath.Join(dir, vectorsFile)
	}
	return vectorsFile
}

// DB opens the registry database, shared by the paper registry and the
// conversation log.
func (r *Runtime) DB() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := registry.Open(r.SQLitePath())
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// Registry returns the paper registry.
func (r *Runtime) Registry() (*registry.Registry, error) {
	if r.reg != nil {
		return r.reg, nil
	}

	db, err := r.DB()
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(db, r.Logger)
	if err != nil {
		return nil, err
	}
	r.reg = reg
	return reg, nil
}

// Sessions returns the conversation log store.
func (r *Runtime) Sessions() (*session.SQLiteStore, error) {
	if r.sessions != nil {
		return r.sessions, nil
	}

	db, err := r.DB()
	if err != nil {
		return nil, err
	}

	s, err := session.NewSQLiteStore(db, r.Logger)
	if err != nil {
		return nil, err
	}
	r.sessions = s
	return s, nil
}

// Embedder returns the configured embedding provider wrapped in the
// in-process cache.
func (r *Runtime) Embedder() (embeddings.Embedder, error) {
	if r.embedder != nil {
		return r.embedder, nil
	}

	e, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: r.Cfg.Embedding.Provider,
		TargetURL:    r.Cfg.Embedding.Target,
		Model:        r.Cfg.Embedding.Model,
		Dimensions:   int(r.Cfg.Embedding.Dimensions),
		BatchSize:    r.Cfg.Embedding.BatchSize,
		CacheSize:    r.Cfg.Embedding.CacheSize,
		MaxRetries:   r.Cfg.Ingest.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	r.embedder = e
	return e, nil
}

// VectorStore returns the chunk index bound to the active embedding
// model version.
func (r *Runtime) VectorStore() (vector.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	embedder, err := r.Embedder()
	if err != nil {
		return nil, err
	}

	s, err := vectorutils.NewStore(&vectorutils.NewStoreOpts{
		ProviderType: r.Cfg.VectorStore.Provider,
		DBPath:       r.VectorPath(),
		Dimensions:   r.Cfg.Embedding.Dimensions,
		ModelVersion: embedder.ModelVersion(),
		Logger:       r.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.store = s
	return s, nil
}

// Generator returns the configured generation provider.
func (r *Runtime) Generator() (llm.Generator, error) {
	if r.generator != nil {
		return r.generator, nil
	}

	g, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: r.Cfg.LLM.Provider,
		TargetURL:    r.Cfg.LLM.Target,
		Model:        r.Cfg.LLM.Model,
		MaxRetries:   r.Cfg.Ingest.MaxRetries,
		Logger:       r.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.generator = g
	return g, nil
}

// Chunker returns a chunker built from the configured window settings.
func (r *Runtime) Chunker() (*chunker.Chunker, error) {
	return chunker.New(chunker.Config{
		MaxChars:          r.Cfg.Chunking.MaxChars,
		OverlapChars:      r.Cfg.Chunking.OverlapChars,
		BoundaryTolerance: r.Cfg.Chunking.BoundaryTolerance,
	})
}

// Close releases everything the runtime opened.
func (r *Runtime) Close() {
	if r.generator != nil {
		_ = r.generator.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
	if r.embedder != nil {
		_ = r.embedder.Close()
	}
	if r.db != nil {
		_ = r.db.Close()
	}
	_ = r.Logger.Sync()
}
