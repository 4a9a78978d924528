// Package paperscmder provides the papers command for listing the local
// paper library.
package paperscmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/offprinthq/offprint/cmd/offprint/wiring"
	"github.com/offprinthq/offprint/pkg/cliui"
	"github.com/offprinthq/offprint/pkg/paper"
	"github.com/offprinthq/offprint/pkg/vector"
)

var (
	readyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	processingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const papersLongDesc string = `List papers in the local library.

Shows each paper's ID, title, ingestion status, page count, and indexed
chunk count, newest first. Failed papers include their failure reason.

Examples:
  offprint papers`

const papersShortDesc string = "List papers in the local library"

func NewPapersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papers",
		Short: papersShortDesc,
		Long:  papersLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := wiring.NewRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			return runPapers(cmd.Context(), rt)
		},
	}

	return cmd
}

func runPapers(ctx context.Context, rt *wiring.Runtime) error {
	reg, err := rt.Registry()
	if err != nil {
		return err
	}

	papers, err := reg.List(ctx)
	if err != nil {
		return err
	}

	if len(papers) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No papers yet. Add one with: offprint ingest <pdf>"))
		return nil
	}

	store, err := rt.VectorStore()
	if err != nil {
		return err
	}

	fmt.Println()
	for _, p := range papers {
		fmt.Printf("  %s  %s %s\n",
			statusBadge(p.Status),
			cliui.TitleStyle.Render(p.Title),
			cliui.DimStyle.Render(fmt.Sprintf("(%d pages, %d chunks)", p.Pages, chunkCount(ctx, rt, store, p.ID))),
		)
		fmt.Printf("     %s %s\n",
			cliui.NameStyle.Render(p.ID),
			cliui.DimStyle.Render(p.UploadedAt.Format("2006-01-02 15:04")),
		)
		if p.Status == paper.StatusFailed && p.FailReason != "" {
			fmt.Printf("     %s\n", failedStyle.Render(p.FailReason))
		}
		fmt.Println()
	}

	return nil
}

// chunkCount reports how many chunks a paper holds in the index. A
// paper with nothing indexed (failed, or mid-processing) counts zero.
func chunkCount(ctx context.Context, rt *wiring.Runtime, store vector.Store, paperID string) int {
	chunks, err := store.Chunks(ctx, paperID)
	if err != nil {
		if !errors.Is(err, vector.ErrNotFound) {
			rt.Logger.Debug("counting chunks", zap.String("paper_id", paperID), zap.Error(err))
		}
		return 0
	}
	return len(chunks)
}

func statusBadge(s paper.Status) string {
	switch s {
	case paper.StatusReady:
		return readyStyle.Render("ready     ")
	case paper.StatusProcessing:
		return processingStyle.Render("processing")
	case paper.StatusFailed:
		return failedStyle.Render("failed    ")
	default:
		return string(s)
	}
}
