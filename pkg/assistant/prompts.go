package assistant

import (
	"fmt"
	"strings"

	"github.com/offprinthq/offprint/pkg/paper"
)

const askSystem = `You are a research assistant answering questions about an academic paper.
Answer using ONLY the numbered context excerpts provided.
If the excerpts do not contain the answer, say so plainly instead of guessing.
Cite excerpts by their number, e.g. [2].`

const translateSystem = `You are a precise translator of academic text.
Translate the given passage faithfully, preserving technical terminology,
equations, and citations exactly as written. Output only the translation.`

const simplifySystem = `You rewrite academic text in plain language a
non-specialist can follow. Keep every factual claim; drop nothing
important. Output only the rewritten text.`

// askPrompt assembles the grounded question prompt from retrieved
// context excerpts.
func askPrompt(question string, results []paper.SearchResult) string {
	var b strings.Builder
	b.WriteString("Context excerpts from the paper:\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] (page %d)\n%s\n\n", i+1, r.Page, r.Text)
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}

func translatePrompt(text, lang string) string {
	return fmt.Sprintf("Translate the following text to %s:\n\n%s", lang, text)
}

func simplifyPrompt(text string) string {
	return fmt.Sprintf("Rewrite the following text in plain language:\n\n%s", text)
}
