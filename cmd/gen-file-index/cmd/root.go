// Package cmd provides the CLI commands for gen-file-index.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/airspacemap/gen-file-index/internal/config"
	ierrors "github.com/airspacemap/gen-file-index/internal/errors"
	"github.com/airspacemap/gen-file-index/internal/index"
	"github.com/airspacemap/gen-file-index/internal/logging"
	"github.com/airspacemap/gen-file-index/internal/output"
	"github.com/airspacemap/gen-file-index/pkg/version"
)

// dotEnvFile is loaded from the working directory before config resolution.
const dotEnvFile = ".env"

// diffLimit caps the entries printed per side by check.
const diffLimit = 20

// globalOptions holds flags shared by all commands.
type globalOptions struct {
	root          string
	output        string
	domains       []string
	extensions    []string
	respectIgnore bool
	debug         bool
	noColor       bool

	loggingCleanup func()
}

// NewRootCmd creates the root command for the gen-file-index CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "gen-file-index",
		Short: "Build the data file index for the airspace map",
		Long: `gen-file-index scans <root>/<domain>/<entity>/... for data files and
writes <root>/file-index.json, mapping every domain and entity to the data
files below it.

Run without arguments from the project directory to index ./data.`,
		Example: `  # Index ./data with the defaults
  gen-file-index

  # Index another tree and only the tracon domain
  gen-file-index --root public/data --domain tracon

  # Print the index without writing it
  gen-file-index --dry-run`,
		Version:       version.Version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := index.ModeWrite
			if dryRun {
				mode = index.ModeDryRun
			}
			return runIndex(cmd, opts, mode)
		},
	}

	cmd.SetVersionTemplate("gen-file-index version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return ierrors.ValidationError(err.Error(), err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.root, "root", "", "Data directory to index (default \"data\", or $FILEINDEX_ROOT)")
	pf.StringVar(&opts.output, "output", "", "Index file path, relative to the root unless absolute")
	pf.StringSliceVar(&opts.domains, "domain", nil, "Domain directory to index (repeatable)")
	pf.StringSliceVar(&opts.extensions, "ext", nil, "Recognized file extension, e.g. .json (repeatable)")
	pf.BoolVar(&opts.respectIgnore, "respect-ignore", false, "Honor .indexignore files")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.gen-file-index/logs/")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the index to stdout instead of writing it")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return opts.startLogging(cmd)
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		opts.stopLogging()
		return nil
	}

	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		err = ierrors.New(ierrors.ErrCodeInternal, "interrupted, index not updated", err)
	}
	slog.Debug("command_failed", ierrors.FormatForLog(err)...)
	_, _ = fmt.Fprint(w, ierrors.FormatForCLI(err))
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return ierrors.ValidationError(
			fmt.Sprintf("%s takes no arguments, got %q", cmd.CommandPath(), args), nil).
			WithSuggestion("Use --root to choose the data directory")
	}
	return nil
}

// startLogging installs file logging for --debug and a console logger otherwise.
func (o *globalOptions) startLogging(cmd *cobra.Command) error {
	if !o.debug {
		slog.SetDefault(logging.NewConsole(cmd.ErrOrStderr(), config.NewConfig().LogLevel))
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	o.loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug_logging_enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

func (o *globalOptions) stopLogging() {
	if o.loggingCleanup != nil {
		slog.Info("debug_logging_stopped")
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
}

// loadConfig resolves the root and layers defaults, project file,
// environment and flags.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (string, *config.Config, error) {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return "", nil, ierrors.ConfigError(err.Error(), err)
	}

	root := config.ResolveRoot(o.root)

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, ierrors.ConfigError(err.Error(), err).
			WithDetail("root", root)
	}

	o.applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return "", nil, ierrors.ConfigError(fmt.Sprintf("invalid flags: %s", err), err)
	}

	if !o.debug {
		slog.SetDefault(logging.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel))
	}

	return root, cfg, nil
}

func (o *globalOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("domain") {
		cfg.Domains = o.domains
	}
	if flags.Changed("ext") {
		cfg.Extensions = o.extensions
	}
	if flags.Changed("respect-ignore") {
		cfg.RespectIgnoreFiles = o.respectIgnore
	}
}

func (o *globalOptions) writer(w io.Writer) *output.Writer {
	if o.noColor {
		return output.NewWithColor(w, false)
	}
	return output.New(w)
}

// runIndex builds the index in the given mode and reports the outcome.
func runIndex(cmd *cobra.Command, opts *globalOptions, mode index.Mode) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	runner, err := index.NewRunner(index.RunnerConfig{
		Root:   root,
		Config: cfg,
		Mode:   mode,
		Stdout: cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx)

	// In dry-run mode stdout carries the index itself.
	status := cmd.OutOrStdout()
	if mode != index.ModeWrite {
		status = cmd.ErrOrStderr()
	}
	out := opts.writer(status)

	if err != nil {
		if res != nil && ierrors.GetCode(err) == ierrors.ErrCodeIndexStale {
			out.DiffLines(res.Diff.Added, res.Diff.Removed, diffLimit)
		}
		return err
	}

	if mode == index.ModeCheck {
		out.Successf("%s is up to date (%d files)", res.OutputPath, res.Stats.Files)
		return nil
	}

	out.Summary(output.Summary{
		Domains:  res.Stats.Domains,
		Entities: res.Stats.Entities,
		Files:    res.Stats.Files,
		Output:   res.OutputPath,
		Duration: res.Duration,
		DryRun:   mode == index.ModeDryRun,
	})
	return nil
}
