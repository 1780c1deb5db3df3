package cmd

import (
	"github.com/spf13/cobra"

	"github.com/airspacemap/gen-file-index/internal/index"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the index file is up to date",
		Long: `Build the index in memory and compare it with the file on disk.

Exits non-zero and lists the differing entries when the file is missing or
out of date. Nothing is written.`,
		Example: `  # Fail a CI job when file-index.json needs regenerating
  gen-file-index check --root public/data`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, opts, index.ModeCheck)
		},
	}
}
