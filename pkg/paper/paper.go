// Package paper defines the core domain types shared across the ingestion
// and retrieval pipeline: papers, their chunks, search results, conversation
// turns, and recommendation candidates.
package paper

import "time"

// Status is the lifecycle state of a paper in the registry.
type Status string

const (
	// StatusProcessing means ingestion is in flight; the paper's chunks
	// are not yet visible to search.
	StatusProcessing Status = "processing"

	// StatusReady means the paper's chunks and vectors are fully committed.
	StatusReady Status = "ready"

	// StatusFailed means ingestion failed and left no chunks behind.
	StatusFailed Status = "failed"
)

// ValidTransition reports whether a status change is allowed.
// processing may resolve to ready or failed; ready and failed may return
// to processing only through an explicit reprocess.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusProcessing:
		return to == StatusReady || to == StatusFailed
	case StatusReady, StatusFailed:
		return to == StatusProcessing
	default:
		return false
	}
}

// Paper is a registered document owned by the registry.
type Paper struct {
	// ID is the registry identifier (a UUID).
	ID string `json:"id"`

	// Title of the paper, from PDF metadata or the filename.
	Title string `json:"title"`

	// Source is where the paper came from: a local file path, or an
	// arXiv identifier for papers pulled from arXiv.
	Source string `json:"source"`

	// UploadedAt is when the paper was registered.
	UploadedAt time.Time `json:"uploaded_at"`

	// Pages is the page count reported by the extraction collaborator.
	Pages int `json:"pages"`

	// Status is the ingestion lifecycle state.
	Status Status `json:"status"`

	// FailReason holds the ingestion failure reason when Status is failed.
	FailReason string `json:"fail_reason,omitempty"`

	// ModelVersion is the embedding model version the paper was indexed
	// with. A different active version requires a reprocess.
	ModelVersion string `json:"model_version,omitempty"`
}

// Chunk is a contiguous, page-attributed span of a paper's extracted text.
// Chunks are immutable once created.
type Chunk struct {
	// ID uniquely identifies the chunk (paper ID plus ordinal).
	ID string `json:"id"`

	// PaperID is the owning paper.
	PaperID string `json:"paper_id"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Page is the page the chunk starts on, for citations.
	Page int `json:"page"`

	// Ordinal is the zero-based position of the chunk within its paper.
	// Ordinals form a contiguous sequence per paper.
	Ordinal int `json:"ordinal"`

	// Start and End delimit the chunk's span in the extracted text,
	// measured in runes.
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchResult is a ranked retrieval hit. Ephemeral, produced per query.
type SearchResult struct {
	ChunkID string  `json:"chunk_id"`
	PaperID string  `json:"paper_id"`
	Ordinal int     `json:"ordinal"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
	Text    string  `json:"text,omitempty"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
}

// Citation points a generated answer back at the chunk that grounded it.
type Citation struct {
	ChunkID string  `json:"chunk_id"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
}

// Turn is one question/answer exchange in a session's conversation log.
type Turn struct {
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Candidate is a re-ranked arXiv recommendation. Never persisted.
type Candidate struct {
	ArxivID   string    `json:"arxiv_id"`
	Title     string    `json:"title"`
	Abstract  string    `json:"abstract"`
	Authors   string    `json:"authors"`
	Published time.Time `json:"published"`
	Score     float64   `json:"score"`
}
