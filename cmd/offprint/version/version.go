// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offprinthq/offprint/pkg/utils"
)

const versionLongDesc string = `Print the offprint version.

Shows the version, git commit, and build time baked in at build time.

Examples:
  offprint version`

const versionShortDesc string = "Print the offprint version"

func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: versionShortDesc,
		Long:  versionLongDesc,
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("offprint %s (%s) built %s\n", utils.Version, utils.Sha, utils.Buildtime)
		},
	}

	return cmd
}
