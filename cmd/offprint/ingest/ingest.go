// Package ingestcmder provides the ingest command for indexing PDF papers.
package ingestcmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/offprinthq/offprint/cmd/offprint/wiring"
	"github.com/offprinthq/offprint/pkg/cliui"
	"github.com/offprinthq/offprint/pkg/extract"
	"github.com/offprinthq/offprint/pkg/ingest"
	"github.com/offprinthq/offprint/pkg/utils"
)

const ingestLongDesc string = `Ingest one or more PDF papers into the local index.

Each paper is extracted, chunked, embedded, and indexed as a unit. Papers
are processed in parallel by a worker pool, but a paper either lands fully
indexed or not at all; a failed paper keeps its failure reason in the
registry and leaves nothing behind in the chunk index.

Embedding requires a running Ollama instance with the configured
embedding model pulled.

Examples:
  offprint ingest paper.pdf
  offprint ingest papers/*.pdf --workers 6`

const ingestShortDesc string = "Ingest PDF papers into the local index"

type ingestCommander struct {
	paths   []string
	workers uint
}

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <pdf>...",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.paths = args

			rt, err := wiring.NewRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !cmd.Flags().Changed("workers") {
				cmder.workers = rt.Cfg.Ingest.Workers
			}

			return cmder.run(cmd.Context(), rt)
		},
	}

	cmd.Flags().UintVarP(&cmder.workers, "workers", "w", 3, "Number of parallel ingestion workers")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context, rt *wiring.Runtime) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

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

	pool, err := ingest.NewPool(&ingest.PoolConfig{
		Context:    ctx,
		Pipeline:   pipeline,
		NumWorkers: c.workers,
		QueueSize:  rt.Cfg.Ingest.QueueSize,
		Logger:     rt.Logger,
	})
	if err != nil {
		return err
	}

	noun := "paper"
	if len(c.paths) > 1 {
		noun = "papers"
	}

	err = cliui.Step(os.Stdout, fmt.Sprintf("Ingesting %d %s", len(c.paths), noun), func() error {
		for _, path := range c.paths {
			if !pool.Enqueue(ingest.Job{Path: path}) {
				return fmt.Errorf("ingest queue full, retry with a larger ingest.queue_size")
			}
		}
		pool.Close()
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()

	failed := 0
	for _, result := range pool.Results() {
		if result.Err != nil {
			failed++
			fmt.Printf("  %s %s\n    %s\n",
				cliui.FailMark,
				result.Path,
				cliui.DimStyle.Render(result.Err.Error()),
			)
			continue
		}

		fmt.Printf("  %s %s %s\n",
			cliui.SuccessMark,
			result.Path,
			cliui.DimStyle.Render(utils.Truncate(result.PaperID, 8)),
		)
	}
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d of %d papers failed to ingest", failed, len(c.paths))
	}
	return nil
}
