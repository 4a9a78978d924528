// Package removecmder provides the remove command for deleting papers
// from the local library.
package removecmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offprinthq/offprint/cmd/offprint/wiring"
	"github.com/offprinthq/offprint/pkg/cliui"
	"github.com/offprinthq/offprint/pkg/registry"
)

const removeLongDesc string = `Remove a paper from the local library.

Deletes the paper's chunks and vectors from the index and its record
from the registry. The original PDF file is not touched. Conversation
logs that cited the paper are kept.

Examples:
  offprint remove 4f1c9b2a-77d1-4b0e-9f3e-2d9cc2b7a614`

const removeShortDesc string = "Remove a paper from the local library"

func NewRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <paper-id>",
		Short: removeShortDesc,
		Long:  removeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := wiring.NewRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			return runRemove(cmd.Context(), rt, args[0])
		},
	}

	return cmd
}

func runRemove(ctx context.Context, rt *wiring.Runtime, paperID string) error {
	reg, err := rt.Registry()
	if err != nil {
		return err
	}

	// Verify the paper exists before touching the index.
	p, err := reg.Get(ctx, paperID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("no paper with ID %q", paperID)
		}
		return err
	}

	store, err := rt.VectorStore()
	if err != nil {
		return err
	}

	if err := store.Delete(ctx, paperID); err != nil {
		return fmt.Errorf("removing chunks: %w", err)
	}

	if err := reg.Delete(ctx, paperID); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed %s %s\n\n",
		cliui.SuccessMark,
		cliui.TitleStyle.Render(p.Title),
		cliui.DimStyle.Render(paperID),
	)
	return nil
}
