package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	hyphenBreak  = regexp.MustCompile(`(\p{L})-\n(\p{L})`)
	softBreak    = regexp.MustCompile(`([^.!?:\n])\n([a-z])`)
	excessBlanks = regexp.MustCompile(`\n{3,}`)
	runsOfSpaces = regexp.MustCompile(`[ \t]{2,}`)
)

// PDFExtractor extracts text from PDF files page by page.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads the PDF at path and returns its cleaned text with a page
// map. Pages that yield no text keep their page number but contribute no
// span. The pdf library panics on some malformed files, so extraction is
// guarded with recover.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("extract pdf %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	doc = &Document{
		PageCount: reader.NumPage(),
		Title:     metadataTitle(reader),
	}

	var b strings.Builder
	for i := 1; i <= doc.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		raw, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the paper.
			continue
		}
		text := cleanPageText(raw)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		start := utf8.RuneCountInString(b.String())
		b.WriteString(text)
		doc.Pages = append(doc.Pages, PageSpan{
			Page:  i,
			Start: start,
			End:   start + utf8.RuneCountInString(text),
		})
	}

	doc.Text = b.String()
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("extract pdf %s: %w", path, ErrNoText)
	}
	return doc, nil
}

// cleanPageText normalizes extracted page text before offsets are taken:
// rejoins hyphenated line breaks, merges soft-wrapped lines, and collapses
// runs of whitespace.
func cleanPageText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = hyphenBreak.ReplaceAllString(s, "$1$2")
	s = softBreak.ReplaceAllString(s, "$1 $2")
	s = runsOfSpaces.ReplaceAllString(s, " ")
	s = excessBlanks.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func metadataTitle(r *pdf.Reader) string {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	title := info.Key("Title")
	if title.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(title.Text())
}
