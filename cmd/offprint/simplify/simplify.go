// Package simplifycmder provides the simplify command for plain-language
// rewrites of paper passages.
package simplifycmder

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
	"github.com/offprinthq/offprint/pkg/cliui"
)

const simplifyLongDesc string = `Rewrite a passage in plain language.

Rewrites dense academic prose so a non-expert can follow it, keeping the
technical claims intact. The passage is taken from the command line, or
from stdin when omitted so passages can be piped in.

Examples:
  offprint simplify "we posit an inductive bias towards compositionality"
  pbpaste | offprint simplify`

const simplifyShortDesc string = "Rewrite a passage in plain language"

type simplifyCommander struct {
	text    string
	session string
}

func NewSimplifyCmd() *cobra.Command {
	cmder := &simplifyCommander{}

	cmd := &cobra.Command{
		Use:   "simplify [text]",
		Short: simplifyShortDesc,
		Long:  simplifyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cmder.text = args[0]
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
	cmd.Flags().StringP("text", "t", "", "Text to simplify (alternative to the positional argument)")

	return cmd
}

func (c *simplifyCommander) run(ctx context.Context, rt *wiring.Runtime) error {
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
		return errors.New("nothing to simplify: pass text as an argument or pipe it on stdin")
	}

	asst, err := wiring.NewSpanAssistant(rt)
	if err != nil {
		return err
	}

	tokens, err := asst.Simplify(ctx, c.session, c.text)
	if err != nil {
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
