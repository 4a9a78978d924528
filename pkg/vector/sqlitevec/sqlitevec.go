// Package sqlitevec provides a SQLite-backed vector store using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/utils"
	"github.com/offprinthq/offprint/pkg/vector"
)

const snippetLen = 160

// Store implements vector.Store using SQLite with sqlite-vec.
type Store struct {
	db           *sql.DB
	dimensions   uint
	modelVersion string
	logger       *zap.Logger

	// Serializes writers. Readers go straight to SQLite.
	mu sync.Mutex
}

// Config holds configuration for the SQLite vec store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint

	// ModelVersion identifies the embedding model the index is built
	// with. Recorded in index meta on insert; a mismatch at search time
	// means the index needs a reindex.
	ModelVersion string
}

// NewStore creates a new SQLite vector store backed by sqlite-vec.
func NewStore(c Config, logger *zap.Logger) (*Store, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}
	if c.ModelVersion == "" {
		return nil, fmt.Errorf("embedding model version is required")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// Chunk metadata lives in a regular table keyed by rowid; the vec0
	// virtual table reuses the same rowid so a chunk and its vector
	// always delete together.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL UNIQUE,
			paper_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			page INTEGER NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			text TEXT NOT NULL,
			UNIQUE(paper_id, ordinal)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_chunks_paper ON chunks(paper_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks index: %w", err)
	}

	createVec := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunk_embeddings USING vec0(
			paper_id text partition key,
			embedding float[%d] distance_metric=cosine
		)
	`, c.Dimensions)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS index_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index meta table: %w", err)
	}

	logger.Info("sqlite-vec store initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("model_version", c.ModelVersion),
		zap.String("vec_version", vecVersion),
	)

	return &Store{
		db:           db,
		dimensions:   c.Dimensions,
		modelVersion: c.ModelVersion,
		logger:       logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeFloat32 converts a little-endian byte slice back to a float32 slice.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// Insert stores all chunks and vectors for a paper in one transaction.
// A wrong-width vector anywhere in the batch rolls the whole paper back.
func (s *Store) Insert(ctx context.Context, paperID string, items []vector.ChunkEmbedding) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// An index stamped with a different model must be reindexed, not
	// extended. Refusing here keeps every stored vector comparable.
	if err := s.checkModelVersion(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if uint(len(item.Vector)) != s.dimensions {
			return fmt.Errorf("%w: chunk %s has width %d, index wants %d",
				vector.ErrDimensionMismatch, item.Chunk.ID, len(item.Vector), s.dimensions)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO chunks(chunk_id, paper_id, ordinal, page, start_offset, end_offset, text)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, item.Chunk.ID, paperID, item.Chunk.Ordinal, item.Chunk.Page,
			item.Chunk.Start, item.Chunk.End, item.Chunk.Text)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", item.Chunk.ID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid for chunk %s: %w", item.Chunk.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunk_embeddings(rowid, paper_id, embedding) VALUES (?, ?, ?)
		`, rowID, paperID, serializeFloat32(item.Vector)); err != nil {
			return fmt.Errorf("inserting embedding for chunk %s: %w", item.Chunk.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta(key, value) VALUES ('model_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, s.modelVersion); err != nil {
		return fmt.Errorf("recording model version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("inserted paper chunks",
		zap.String("paper_id", paperID),
		zap.Int("count", len(items)),
	)

	return nil
}

// Delete removes every chunk and embedding for the paper, verifying
// before commit that no embedding rows survive.
func (s *Store) Delete(ctx context.Context, paperID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunk_embeddings WHERE paper_id = ?`, paperID,
	); err != nil {
		return fmt.Errorf("deleting embeddings for paper %s: %w", paperID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE paper_id = ?`, paperID,
	); err != nil {
		return fmt.Errorf("deleting chunks for paper %s: %w", paperID, err)
	}

	var remaining int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunk_embeddings WHERE paper_id = ?`, paperID,
	).Scan(&remaining); err != nil {
		return fmt.Errorf("verifying delete for paper %s: %w", paperID, err)
	}
	if remaining > 0 {
		return fmt.Errorf("%w: %d rows for paper %s", vector.ErrOrphanVector, remaining, paperID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("deleted paper from store", zap.String("paper_id", paperID))

	return nil
}

// Search finds the topK chunks nearest to the query embedding via vec0
// KNN. Cosine distance becomes score = 1 - distance; ties break on
// ordinal ascending.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int, opts vector.SearchOptions) ([]paper.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}
	if uint(len(embedding)) != s.dimensions {
		return nil, fmt.Errorf("%w: query width %d, index wants %d",
			vector.ErrDimensionMismatch, len(embedding), s.dimensions)
	}

	if err := s.checkModelVersion(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT
			c.chunk_id,
			c.paper_id,
			c.ordinal,
			c.page,
			c.start_offset,
			c.end_offset,
			c.text,
			ve.distance
		FROM chunk_embeddings ve
		INNER JOIN chunks c ON c.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
	`
	args := []any{serializeFloat32(embedding), topK}
	if opts.PaperID != "" {
		query += ` AND ve.paper_id = ?`
		args = append(args, opts.PaperID)
	}
	query += ` ORDER BY ve.distance`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []paper.SearchResult
	for rows.Next() {
		var r paper.SearchResult
		var distance float64
		if err := rows.Scan(&r.ChunkID, &r.PaperID, &r.Ordinal, &r.Page,
			&r.Start, &r.End, &r.Text, &distance); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}

		r.Score = 1.0 - distance
		if opts.MinScore > 0 && r.Score < opts.MinScore {
			continue
		}
		r.Snippet = utils.Truncate(r.Text, snippetLen)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Ordinal < results[j].Ordinal
	})

	s.logger.Debug("searched sqlite-vec",
		zap.Int("results", len(results)),
		zap.String("paper_id", opts.PaperID),
	)

	return results, nil
}

// checkModelVersion compares the configured embedding model against the
// version the index was last built with.
func (s *Store) checkModelVersion(ctx context.Context) error {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM index_meta WHERE key = 'model_version'`,
	).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		// Empty index, nothing to compare.
		return nil
	case err != nil:
		return fmt.Errorf("reading index meta: %w", err)
	}

	if stored != s.modelVersion {
		return fmt.Errorf("%w: index built with %q, configured %q, reindex required",
			vector.ErrDimensionMismatch, stored, s.modelVersion)
	}
	return nil
}

// Chunks returns the paper's chunks ordered by ordinal.
func (s *Store) Chunks(ctx context.Context, paperID string) ([]paper.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, paper_id, ordinal, page, start_offset, end_offset, text
		FROM chunks
		WHERE paper_id = ?
		ORDER BY ordinal
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []paper.Chunk
	for rows.Next() {
		var c paper.Chunk
		if err := rows.Scan(&c.ID, &c.PaperID, &c.Ordinal, &c.Page,
			&c.Start, &c.End, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", vector.ErrNotFound, paperID)
	}
	return chunks, nil
}

// Vectors returns the paper's embedding vectors ordered by ordinal.
func (s *Store) Vectors(ctx context.Context, paperID string) ([][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ve.embedding
		FROM chunk_embeddings ve
		INNER JOIN chunks c ON c.rowid = ve.rowid
		WHERE c.paper_id = ?
		ORDER BY c.ordinal
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var vecs [][]float32
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		v, err := deserializeFloat32(blob)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	if len(vecs) == 0 {
		return nil, fmt.Errorf("%w: %s", vector.ErrNotFound, paperID)
	}
	return vecs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements vector.Store
var _ vector.Store = (*Store)(nil)
