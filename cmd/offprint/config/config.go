// Package configcmder provides the config command for managing persistent
// offprint configuration stored in the .offprint/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent offprint configuration.

Configuration is stored as config.toml in the .offprint/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path,
  vector_store.provider, vector_store.path,
  embedding.provider, embedding.target, embedding.model,
  embedding.dimensions, embedding.batch_size, embedding.cache_size,
  llm.provider, llm.target, llm.model,
  chunking.max_chars, chunking.overlap_chars, chunking.boundary_tolerance,
  retrieval.top_k, retrieval.min_score,
  ingest.workers, ingest.queue_size, ingest.max_retries,
  arxiv.base_url, arxiv.candidate_pool

Use subcommands to get, set, or list configuration values:
  offprint config set <key> <value>    Set a configuration value
  offprint config get <key>            Get a configuration value
  offprint config list                 List all configuration values

Examples:
  offprint config set embedding.model nomic-embed-text
  offprint config set llm.model qwen2.5:7b
  offprint config get retrieval.top_k
  offprint config list`

const configShortDesc string = "Manage persistent offprint configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
