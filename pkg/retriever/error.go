package retriever

import "errors"

// ErrNoContext indicates retrieval produced no qualifying chunks, so a
// grounded answer is impossible.
var ErrNoContext = errors.New("no relevant context found")
