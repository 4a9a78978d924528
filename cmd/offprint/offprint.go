// Package offprintcmder
package offprintcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/offprinthq/offprint/cmd/offprint/ask"
	configcmder "github.com/offprinthq/offprint/cmd/offprint/config"
	ingestcmder "github.com/offprinthq/offprint/cmd/offprint/ingest"
	initcmder "github.com/offprinthq/offprint/cmd/offprint/init"
	paperscmder "github.com/offprinthq/offprint/cmd/offprint/papers"
	recommendcmder "github.com/offprinthq/offprint/cmd/offprint/recommend"
	removecmder "github.com/offprinthq/offprint/cmd/offprint/remove"
	reprocesscmder "github.com/offprinthq/offprint/cmd/offprint/reprocess"
	simplifycmder "github.com/offprinthq/offprint/cmd/offprint/simplify"
	translatecmder "github.com/offprinthq/offprint/cmd/offprint/translate"
	versioncmder "github.com/offprinthq/offprint/cmd/offprint/version"
)

const offprintLongDesc string = `Offprint is a local research-paper reading companion.

Ingest PDF papers into a local index, then ask grounded questions,
translate or simplify passages, and discover related work on arXiv.
Embedding and generation run against a local Ollama instance; nothing
about your library leaves your machine except arXiv search queries.

Get started:
  offprint init                      Initialize a local .offprint/ directory
  offprint ingest paper.pdf          Index a paper
  offprint papers                    List indexed papers
  offprint ask "what is attention?"  Ask a grounded question`

const offprintShortDesc string = "Offprint - Local paper reading companion"

func NewOffprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offprint",
		Short: offprintShortDesc,
		Long:  offprintLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .offprint/ config directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(paperscmder.NewPapersCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(translatecmder.NewTranslateCmd())
	cmd.AddCommand(simplifycmder.NewSimplifyCmd())
	cmd.AddCommand(recommendcmder.NewRecommendCmd())
	cmd.AddCommand(reprocesscmder.NewReprocessCmd())
	cmd.AddCommand(removecmder.NewRemoveCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
