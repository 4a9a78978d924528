package vector

import "errors"

var (
	// ErrNotFound is returned when a paper has no rows in the store.
	ErrNotFound = errors.New("paper not found in vector store")

	// ErrDimensionMismatch is returned when a vector's width does not
	// match the index, or the index was built by a different embedding
	// model and needs a reindex.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrOrphanVector is returned when embedding rows survive the
	// deletion of their chunks.
	ErrOrphanVector = errors.New("orphaned embedding rows after delete")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")
)
