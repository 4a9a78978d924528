package wiring

import (
	"fmt"
	"io"
	"strings"

	"github.com/offprinthq/offprint/pkg/llm"
)

// StreamTokens writes token text to w as it arrives and returns the
// accumulated output. A stream error aborts with whatever was already
// written.
func StreamTokens(w io.Writer, tokens <-chan llm.Token) (string, error) {
	var b strings.Builder
	for token := range tokens {
		if token.Err != nil {
			return b.String(), token.Err
		}
		if token.Done {
			continue
		}
		b.WriteString(token.Text)
		fmt.Fprint(w, token.Text)
	}
	return b.String(), nil
}
