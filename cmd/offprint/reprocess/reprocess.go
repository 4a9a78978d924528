// Package reprocesscmder provides the reprocess command for re-indexing
// a paper after a failure or an embedding model change.
package reprocesscmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/offprinthq/offprint/cmd/offprint/wiring"
	"github.com/offprinthq/offprint/pkg/cliui"
	"github.com/offprinthq/offprint/pkg/extract"
	"github.com/offprinthq/offprint/pkg/ingest"
	"github.com/offprinthq/offprint/pkg/registry"
)

const reprocessLongDesc string = `Re-run ingestion for a paper.

Deletes the paper's existing chunks and vectors, then extracts, chunks,
embeds, and indexes the paper from its original file again. Use this to
recover a failed paper or to re-index after switching embedding models.

The paper must be in ready or failed state; a paper currently being
processed cannot be reprocessed.

Examples:
  offprint reprocess 4f1c9b2a-77d1-4b0e-9f3e-2d9cc2b7a614`

const reprocessShortDesc string = "Re-run ingestion for a paper"

func NewReprocessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reprocess <paper-id>",
		Short: reprocessShortDesc,
		Long:  reprocessLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := wiring.NewRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			return runReprocess(cmd.Context(), rt, args[0])
		},
	}

	return cmd
}

func runReprocess(ctx context.Context, rt *wiring.Runtime, paperID string) error {
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

	ch, err := rt.Chunker()
	if err != nil {
		return err
	}

	pipeline := ingest.NewPipeline(extract.NewPDFExtractor(), ch, embedder, store, reg, rt.Logger)

	err = cliui.Step(os.Stdout, "Reprocessing paper", func() error {
		return pipeline.Reprocess(ctx, paperID)
	})
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("no paper with ID %q", paperID)
		}
		return err
	}

	fmt.Printf("\n  %s Reprocessed %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(paperID))
	return nil
}
