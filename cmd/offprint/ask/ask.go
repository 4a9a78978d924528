// Package askcmder provides the ask command for grounded question
// answering over indexed papers.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/offprinthq/offprint/cmd/offprint/wiring"
	"github.com/offprinthq/offprint/pkg/assistant"
	"github.com/offprinthq/offprint/pkg/cliui"
	"github.com/offprinthq/offprint/pkg/retriever"
	"github.com/offprinthq/offprint/pkg/utils"
)

const askLongDesc string = `Ask a question grounded in your indexed papers.

Retrieves the most relevant chunks for the question, streams a generated
answer grounded in them, and cites the pages the answer drew on. The
answer only uses material from indexed papers; if nothing relevant is
found, no answer is generated.

Use --paper to scope the question to a single paper. Use --session to
keep related questions in one conversation log. Press Ctrl+C to cancel
a generation mid-stream; cancelled answers are never logged.

Examples:
  offprint ask "what problem does attention solve?"
  offprint ask "summarize the results" --paper 4f1c9b2a
  offprint ask "and the limitations?" --session transformers --render`

const askShortDesc string = "Ask a question grounded in your papers"

type askCommander struct {
	question string
	paperID  string
	session  string
	render   bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.question = args[0]

			rt, err := wiring.NewRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			return cmder.run(cmd.Context(), rt)
		},
	}

	cmd.Flags().StringVarP(&cmder.paperID, "paper", "p", "", "Scope the question to one paper ID")
	cmd.Flags().StringVarP(&cmder.session, "session", "s", "default", "Conversation session name")
	cmd.Flags().BoolVarP(&cmder.render, "render", "r", false, "Re-render the answer as markdown when the stream completes")

	return cmd
}

func (c *askCommander) run(ctx context.Context, rt *wiring.Runtime) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	embedder, err := rt.Embedder()
	if err != nil {
		return err
	}

	store, err := rt.VectorStore()
	if err != nil {
		return err
	}

	generator, err := rt.Generator()
	if err != nil {
		return err
	}

	sessions, err := rt.Sessions()
	if err != nil {
		return err
	}

	asst := assistant.New(
		retriever.New(embedder, store, rt.Logger),
		generator,
		sessions,
		assistant.Config{
			TopK:     rt.Cfg.Retrieval.TopK,
			MinScore: rt.Cfg.Retrieval.MinScore,
		},
		rt.Logger,
	)

	tokens, err := asst.Ask(ctx, c.session, c.paperID, c.question)
	if err != nil {
		if errors.Is(err, retriever.ErrNoContext) {
			fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Nothing relevant found in your papers. Try ingesting more, or rephrase the question."))
			return nil
		}
		return err
	}

	fmt.Println()
	answer, streamErr := wiring.StreamTokens(os.Stdout, tokens)
	fmt.Println()

	if streamErr != nil {
		if ctx.Err() != nil {
			fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Cancelled."))
			return nil
		}
		return streamErr
	}

	if c.render && answer != "" {
		rendered, err := cliui.RenderMarkdown(answer)
		if err == nil {
			fmt.Print(rendered)
		}
	}

	c.printSources(ctx, rt)
	return nil
}

// printSources shows the citations logged with the just-completed turn.
func (c *askCommander) printSources(ctx context.Context, rt *wiring.Runtime) {
	sessions, err := rt.Sessions()
	if err != nil {
		return
	}

	turns, err := sessions.Turns(ctx, c.session)
	if err != nil || len(turns) == 0 {
		return
	}

	last := turns[len(turns)-1]
	if last.Question != c.question || len(last.Citations) == 0 {
		return
	}

	fmt.Printf("\n  %s\n", cliui.KeyStyle.Render("Sources:"))
	for i, citation := range last.Citations {
		fmt.Printf("  %s page %d %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("[%d]", i+1)),
			citation.Page,
			cliui.ScoreStyle.Render(fmt.Sprintf("%.2f", citation.Score)),
			cliui.DimStyle.Render(utils.Truncate(citation.ChunkID, 8)),
		)
	}
	fmt.Println()
}
