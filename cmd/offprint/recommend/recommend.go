// Package recommendcmder provides the recommend command for discovering
// related work on arXiv.
package recommendcmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/offprinthq/offprint/cmd/offprint/wiring"
	"github.com/offprinthq/offprint/pkg/arxiv"
	"github.com/offprinthq/offprint/pkg/cliui"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/recommend"
	"github.com/offprinthq/offprint/pkg/registry"
	"github.com/offprinthq/offprint/pkg/vector"
)

const recommendLongDesc string = `Recommend related papers from arXiv.

Searches arXiv for papers related to one of your indexed papers and
re-ranks the hits by semantic similarity to the paper's content, so
results that merely share keywords fall below results that share ideas.
The source paper itself is never recommended.

This is the only offprint command that talks to the network beyond your
local Ollama instance.

Examples:
  offprint recommend 4f1c9b2a-77d1-4b0e-9f3e-2d9cc2b7a614
  offprint recommend 4f1c9b2a-77d1-4b0e-9f3e-2d9cc2b7a614 --limit 10`

const recommendShortDesc string = "Recommend related papers from arXiv"

type recommendCommander struct {
	paperID string
	limit   int
}

func NewRecommendCmd() *cobra.Command {
	cmder := &recommendCommander{}

	cmd := &cobra.Command{
		Use:   "recommend <paper-id>",
		Short: recommendShortDesc,
		Long:  recommendLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.paperID = args[0]

			rt, err := wiring.NewRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			return cmder.run(cmd.Context(), rt)
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 5, "Number of recommendations to return")

	return cmd
}

func (c *recommendCommander) run(ctx context.Context, rt *wiring.Runtime) error {
	reg, err := rt.Registry()
	if err != nil {
		return err
	}

	embedder, err := rt.Embedder()
	if err != nil {
		return err
	}

	store, err := rt.VectorStore()
	if err != nil {
		return err
	}

	searcher := arxiv.NewClient(arxiv.Config{BaseURL: rt.Cfg.Arxiv.BaseURL}, rt.Logger)

	engine := recommend.New(store, embedder, searcher, reg, recommend.Config{
		CandidatePool: rt.Cfg.Arxiv.CandidatePool,
	}, rt.Logger)

	var candidates []paper.Candidate
	err = cliui.Step(os.Stdout, "Searching arXiv", func() error {
		results, searchErr := engine.Recommend(ctx, c.paperID, c.limit)
		candidates = append(candidates, results...)
		return searchErr
	})
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotFound):
			return fmt.Errorf("no paper with ID %q", c.paperID)
		case errors.Is(err, vector.ErrNotFound):
			return fmt.Errorf("paper %q has no indexed chunks; reprocess it first", c.paperID)
		}
		return err
	}

	if len(candidates) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No recommendations found."))
		return nil
	}

	fmt.Println()
	for i, cand := range candidates {
		fmt.Printf("  %s %s %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("#%d", i+1)),
			cliui.TitleStyle.Render(cand.Title),
			cliui.ScoreStyle.Render(fmt.Sprintf("%.3f", cand.Score)),
		)
		fmt.Printf("     %s\n", cliui.DimStyle.Render(cand.Authors))
		fmt.Printf("     %s %s\n",
			cliui.ValueStyle.Render("arxiv.org/abs/"+cand.ArxivID),
			cliui.DimStyle.Render(cand.Published.Format("2006-01-02")),
		)
		fmt.Println()
	}

	return nil
}
