// Package chunker splits extracted paper text into overlapping windows
// sized for embedding. Offsets are rune based throughout so multibyte
// text never splits mid character.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/offprinthq/offprint/pkg/extract"
	"github.com/offprinthq/offprint/pkg/paper"
)

var (
	// ErrInvalidConfig is returned when the chunking parameters cannot
	// produce forward progress.
	ErrInvalidConfig = errors.New("invalid chunker config")
)

// Config controls window sizing.
type Config struct {
	// MaxChars is the maximum chunk length in runes.
	MaxChars int

	// OverlapChars is how many trailing runes of one chunk reappear at
	// the head of the next. Must be smaller than MaxChars.
	OverlapChars int

	// BoundaryTolerance is how far back from the hard cut a chunk may
	// end early to land on a paragraph or sentence boundary.
	BoundaryTolerance int
}

func (c Config) validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("%w: max chars must be positive, got %d", ErrInvalidConfig, c.MaxChars)
	}
	if c.OverlapChars < 0 || c.OverlapChars >= c.MaxChars {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidConfig, c.OverlapChars, c.MaxChars)
	}
	if c.BoundaryTolerance < 0 || c.BoundaryTolerance >= c.MaxChars {
		return fmt.Errorf("%w: boundary tolerance %d must be in [0, %d)", ErrInvalidConfig, c.BoundaryTolerance, c.MaxChars)
	}
	return nil
}

// Chunker windows a document into chunks.
type Chunker struct {
	cfg Config
}

func New(cfg Config) (*Chunker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Chunker{cfg: cfg}, nil
}

// Split is a convenience for one-off chunking with a throwaway Chunker.
func Split(doc *extract.Document, cfg Config) ([]paper.Chunk, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.Chunk(doc), nil
}

// Chunk windows doc.Text into overlapping chunks with contiguous ordinals
// starting at zero. Each chunk carries its rune span into the document and
// the page its span begins on. Whitespace-only windows are dropped without
// leaving ordinal gaps.
func (c *Chunker) Chunk(doc *extract.Document) []paper.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []paper.Chunk
	start := 0
	for start < len(runes) {
		end := start + c.cfg.MaxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.snapToBoundary(runes, start, end)
		}

		cs, ce := trimSpan(runes, start, end)
		if cs < ce {
			chunks = append(chunks, paper.Chunk{
				Text:    string(runes[cs:ce]),
				Page:    doc.PageFor(cs),
				Ordinal: len(chunks),
				Start:   cs,
				End:     ce,
			})
		}

		if end == len(runes) {
			break
		}
		next := end - c.cfg.OverlapChars
		// Overlap never moves the window backwards.
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// snapToBoundary pulls the hard cut at end back to the nearest paragraph
// break, then newline, then sentence end, searching at most
// BoundaryTolerance runes. The hard cut stands when no boundary is found.
func (c *Chunker) snapToBoundary(runes []rune, start, end int) int {
	limit := end - c.cfg.BoundaryTolerance
	if limit < start+1 {
		limit = start + 1
	}

	for i := end; i > limit; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}
	for i := end; i > limit; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	for i := end; i > limit; i-- {
		if isSentenceEnd(runes, i) {
			return i
		}
	}
	return end
}

// isSentenceEnd reports whether position i sits just past a sentence
// terminator followed by whitespace.
func isSentenceEnd(runes []rune, i int) bool {
	if i < 2 || !unicode.IsSpace(runes[i-1]) {
		return false
	}
	return strings.ContainsRune(".!?", runes[i-2])
}

// trimSpan shrinks [start, end) past leading and trailing whitespace so
// stored chunk text and its recorded span stay in lockstep.
func trimSpan(runes []rune, start, end int) (int, int) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return start, end
}
