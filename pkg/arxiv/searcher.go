// Package arxiv is the arXiv search collaborator used to source
// recommendation candidates.
package arxiv

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the arXiv API could not be reached.
var ErrUnavailable = errors.New("arxiv api unavailable")

// Result is one candidate paper returned by a search.
type Result struct {
	// ArxivID is the bare identifier (e.g., "2301.00001"), version
	// suffix stripped.
	ArxivID string

	Title     string
	Abstract  string
	Authors   []string
	Published time.Time
}

// Searcher queries arXiv for candidate papers.
type Searcher interface {
	// Search runs a keyword query and returns up to maxResults
	// candidates in the API's relevance order.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
