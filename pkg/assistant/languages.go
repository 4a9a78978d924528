package assistant

import (
	"sort"
	"strings"
)

// supportedLanguages is the fixed set of translation targets.
var supportedLanguages = map[string]struct{}{
	"arabic":     {},
	"bengali":    {},
	"chinese":    {},
	"dutch":      {},
	"french":     {},
	"german":     {},
	"gujarati":   {},
	"hindi":      {},
	"italian":    {},
	"japanese":   {},
	"korean":     {},
	"portuguese": {},
	"russian":    {},
	"spanish":    {},
	"turkish":    {},
}

// SupportedLanguage reports whether lang is a valid translation target.
// Matching is case-insensitive.
func SupportedLanguage(lang string) bool {
	_, ok := supportedLanguages[strings.ToLower(strings.TrimSpace(lang))]
	return ok
}

// SupportedLanguages returns the translation targets in alphabetical
// order, capitalized for display.
func SupportedLanguages() []string {
	out := make([]string, 0, len(supportedLanguages))
	for lang := range supportedLanguages {
		out = append(out, strings.ToUpper(lang[:1])+lang[1:])
	}
	sort.Strings(out)
	return out
}
