package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/airspacemap/gen-file-index/internal/config"
	ierrors "github.com/airspacemap/gen-file-index/internal/errors"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .fileindex.yaml into the data root",
		Long: `Write a project configuration file with the default settings into the
data root. Domain, extension, output and ignore flags are written into the
file instead of the defaults.`,
		Example: `  # Create data/.fileindex.yaml
  gen-file-index init

  # Overwrite an existing file with two custom domains
  gen-file-index init --force --domain tracon --domain sectors`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, opts *globalOptions, force bool) error {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return ierrors.ConfigError(err.Error(), err)
	}

	root := config.ResolveRoot(opts.root)
	path := filepath.Join(root, config.FileNames[0])

	if existing := config.FindFile(root); existing != "" && !force {
		return ierrors.ValidationError(fmt.Sprintf("%s already exists", existing), nil).
			WithSuggestion("Use --force to overwrite it")
	}

	cfg := config.NewConfig()
	opts.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return ierrors.ConfigError(fmt.Sprintf("invalid flags: %s", err), err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return ierrors.WriteError(root, err)
	}
	if err := cfg.WriteYAML(path); err != nil {
		return ierrors.WriteError(path, err)
	}

	opts.writer(cmd.OutOrStdout()).Successf("Wrote %s", path)
	return nil
}
