// Package extract defines the PDF text-extraction collaborator boundary.
// The core pipeline consumes extracted text plus a page map; how the text
// is produced is an implementation detail behind the Extractor interface.
package extract

import (
	"context"
	"errors"
)

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = errors.New("no extractable text found")

// PageSpan maps a page number onto a rune range of the extracted text.
type PageSpan struct {
	// Page is the 1-based page number.
	Page int

	// Start and End delimit the page's text in the document, in runes.
	Start int
	End   int
}

// Document is the result of extracting a paper.
type Document struct {
	// Text is the cleaned full text of the paper.
	Text string

	// Pages maps page numbers onto rune spans of Text, in page order.
	Pages []PageSpan

	// PageCount is the total number of pages in the source, including
	// pages that produced no text.
	PageCount int

	// Title from document metadata, if present.
	Title string
}

// PageFor returns the page number containing the given rune offset.
// Offsets past the last page attribute to the last page; an empty page
// map yields page 1.
func (d *Document) PageFor(offset int) int {
	page := 1
	for _, span := range d.Pages {
		if offset < span.Start {
			break
		}
		page = span.Page
	}
	return page
}

// Extractor produces a Document from a file on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Document, error)
}
