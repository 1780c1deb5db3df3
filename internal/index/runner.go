package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/airspacemap/gen-file-index/internal/config"
	ierrors "github.com/airspacemap/gen-file-index/internal/errors"
	"github.com/airspacemap/gen-file-index/internal/scanner"
)

// Mode selects what a Runner does with the built index.
type Mode int

const (
	// ModeWrite builds the index and replaces the output file.
	ModeWrite Mode = iota
	// ModeDryRun builds the index and prints it instead of writing.
	ModeDryRun
	// ModeCheck builds the index and fails if the output file differs.
	ModeCheck
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeDryRun:
		return "dry-run"
	case ModeCheck:
		return "check"
	default:
		return "unknown"
	}
}

// RunnerConfig configures an indexing run.
type RunnerConfig struct {
	// Root is the data directory containing the domain directories.
	Root string

	// Config is the loaded configuration (required).
	Config *config.Config

	// Mode selects write, dry-run or check behavior.
	Mode Mode

	// Stdout receives the index in dry-run mode.
	Stdout io.Writer
}

// Result contains the outcome of a run.
type Result struct {
	Index      Index
	Stats      Stats
	OutputPath string
	Duration   time.Duration

	// Written is true when the output file was replaced.
	Written bool

	// Diff holds the changes relative to the existing file (check mode).
	Diff Diff
}

// Runner executes one indexing pass.
type Runner struct {
	root    string
	cfg     *config.Config
	mode    Mode
	stdout  io.Writer
	scanner *scanner.Scanner
}

// NewRunner validates cfg and prepares a scanner for it.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Config == nil {
		return nil, ierrors.InternalError("config is required", nil)
	}
	if err := cfg.Config.Validate(); err != nil {
		return nil, ierrors.ConfigError(err.Error(), err)
	}

	root := cfg.Root
	if root == "" {
		root = config.DefaultRoot
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ierrors.ValidationError(fmt.Sprintf("invalid root %s", root), err)
	}

	sc, err := scanner.New(scanner.Options{
		Extensions:         cfg.Config.Extensions,
		RespectIgnoreFiles: cfg.Config.RespectIgnoreFiles,
	})
	if err != nil {
		return nil, ierrors.InternalError("failed to create scanner", err)
	}

	stdout := cfg.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	return &Runner{
		root:    absRoot,
		cfg:     cfg.Config,
		mode:    cfg.Mode,
		stdout:  stdout,
		scanner: sc,
	}, nil
}

// OutputPath returns the absolute index file path.
func (r *Runner) OutputPath() string {
	return r.cfg.OutputPath(r.root)
}

// Run builds the index and applies the configured mode.
// Nothing is written unless the build succeeds.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	slog.Info("index_start",
		slog.String("root", r.root),
		slog.String("mode", r.mode.String()),
		slog.Any("domains", r.cfg.Domains))

	idx, err := Build(ctx, r.root, r.cfg.Domains, r.scanner)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Index:      idx,
		Stats:      idx.Stats(),
		OutputPath: r.OutputPath(),
	}

	switch r.mode {
	case ModeDryRun:
		err = r.print(idx)
	case ModeCheck:
		res.Diff, err = r.check(idx)
	default:
		err = WriteFile(res.OutputPath, idx)
		res.Written = err == nil
	}

	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	slog.Info("index_complete",
		slog.String("output", res.OutputPath),
		slog.Int("domains", res.Stats.Domains),
		slog.Int("entities", res.Stats.Entities),
		slog.Int("files", res.Stats.Files),
		slog.Duration("duration", res.Duration))

	return res, nil
}

func (r *Runner) print(idx Index) error {
	data, err := idx.Marshal()
	if err != nil {
		return ierrors.InternalError("failed to encode index", err)
	}
	if _, err := r.stdout.Write(data); err != nil {
		return fmt.Errorf("failed to print index: %w", err)
	}
	return nil
}

// check compares idx against the file on disk, byte for byte.
func (r *Runner) check(idx Index) (Diff, error) {
	path := r.OutputPath()

	existing, onDisk, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		d := Compare(Index{}, idx)
		return d, ierrors.New(ierrors.ErrCodeIndexStale,
			fmt.Sprintf("index %s does not exist", path), nil).
			WithSuggestion("Run gen-file-index to create it")
	}
	if err != nil {
		return Diff{}, err
	}

	fresh, err := idx.Marshal()
	if err != nil {
		return Diff{}, ierrors.InternalError("failed to encode index", err)
	}

	d := Compare(existing, idx)
	if string(fresh) == string(onDisk) {
		return d, nil
	}

	msg := fmt.Sprintf("index %s is out of date (%d added, %d removed)", path, len(d.Added), len(d.Removed))
	if d.Empty() {
		msg = fmt.Sprintf("index %s is out of date (formatting or ordering differs)", path)
	}
	return d, ierrors.New(ierrors.ErrCodeIndexStale, msg, nil).
		WithDetail("added", fmt.Sprint(len(d.Added))).
		WithDetail("removed", fmt.Sprint(len(d.Removed))).
		WithSuggestion("Run gen-file-index to regenerate it")
}
