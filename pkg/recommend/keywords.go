package recommend

import (
	"strings"
	"unicode"
)

// maxKeywords caps the derived query length.
const maxKeywords = 8

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "in": {}, "into": {}, "is": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "over": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "towards": {}, "using": {},
	"via": {}, "we": {}, "with": {},
}

// extractKeywords derives a space-joined keyword query from the head of
// the text: lowercased words with stopwords and short tokens dropped,
// first occurrences only.
func extractKeywords(text string) string {
	var (
		keywords []string
		seen     = make(map[string]struct{})
	)

	for _, field := range strings.Fields(text) {
		word := strings.ToLower(strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		if len(word) < 3 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return strings.Join(keywords, " ")
}
