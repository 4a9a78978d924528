// Package translatecmder provides the translate command for translating
// paper passages.
package translatecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/offprinthq/offprint/cmd/offprint/wiring"
	"github.com/offprinthq/offprint/pkg/assistant"
	"github.com/offprinthq/offprint/pkg/cliui"
)

const translateLongDesc string = `Translate a passage to another language.

Translates the given text exactly as written, preserving technical
terminology. The passage is taken from the command line, or from stdin
when omitted so passages can be piped in.

Supported languages: arabic, chinese, dutch, french, german, hindi,
italian, japanese, korean, polish, portuguese, russian, spanish, swedish,
turkish.

Examples:
  offprint translate german "the attention mechanism weighs token pairs"
  pbpaste | offprint translate japanese`

const translateShortDesc string = "Translate a passage to another language"

type translateCommander struct {
	language string
	text     string
	session  string
}

func NewTranslateCmd() *cobra.Command {
	cmder := &translateCommander{}

	cmd := &cobra.Command{
		Use:   "translate <language> [text]",
		Short: translateShortDesc,
		Long:  translateLongDesc,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.language = args[0]
			if len(args) == 2 {
				cmder.text = args[1]
			}
			if cmder.text == "" {
				cmder.text, _ = cmd.Flags().GetString("text")
			}

			rt, err := wiring.NewRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			return cmder.run(cmd.Context(), rt)
		},
	}

	cmd.Flags().StringVarP(&cmder.session, "session", "s", "default", "Conversation session name")
	cmd.Flags().StringP("text", "t", "", "Text to translate (alternative to the positional argument)")

	return cmd
}

func (c *translateCommander) run(ctx context.Context, rt *wiring.Runtime) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if c.text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		c.text = strings.TrimSpace(string(data))
	}
	if c.text == "" {
		return errors.New("nothing to translate: pass text as an argument or pipe it on stdin")
	}

	asst, err := wiring.NewSpanAssistant(rt)
	if err != nil {
		return err
	}

	tokens, err := asst.Translate(ctx, c.session, c.text, c.language)
	if err != nil {
		if errors.Is(err, assistant.ErrUnsupportedLanguage) {
			return fmt.Errorf("unsupported language %q\n\nSupported: %s",
				c.language, strings.Join(assistant.SupportedLanguages(), ", "))
		}
		return err
	}

	fmt.Println()
	_, streamErr := wiring.StreamTokens(os.Stdout, tokens)
	fmt.Println()

	if streamErr != nil {
		if ctx.Err() != nil {
			fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Cancelled."))
			return nil
		}
		return streamErr
	}
	return nil
}
