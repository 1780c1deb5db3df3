package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ierrors "github.com/airspacemap/gen-file-index/internal/errors"
	"github.com/airspacemap/gen-file-index/internal/scanner"
)

// Build walks root/<domain>/<entity>/... for every domain and returns a new
// Index. Missing domain directories produce empty domain entries; any
// traversal error aborts the build.
func Build(ctx context.Context, root string, domains []string, sc *scanner.Scanner) (Index, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ierrors.ValidationError(fmt.Sprintf("invalid root %s", root), err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ierrors.New(ierrors.ErrCodeRootNotFound,
				fmt.Sprintf("data root %s does not exist", absRoot), err).
				WithSuggestion("Run from the project directory or pass --root")
		}
		return nil, ierrors.WalkError(absRoot, err)
	}
	if !info.IsDir() {
		return nil, ierrors.ValidationError(fmt.Sprintf("data root %s is not a directory", absRoot), nil)
	}

	idx := New(domains)

	for _, domain := range domains {
		domainDir := filepath.Join(absRoot, domain)

		entities, err := sc.ListEntities(ctx, domainDir)
		if err != nil {
			return nil, wrapWalk(domainDir, err)
		}
		if entities == nil {
			slog.Debug("domain_missing", slog.String("domain", domain), slog.String("path", domainDir))
			continue
		}

		for _, entity := range entities {
			files, err := sc.ScanEntity(ctx, filepath.Join(domainDir, entity))
			if err != nil {
				return nil, wrapWalk(filepath.Join(domainDir, entity), err)
			}
			idx[domain][entity] = files

			slog.Debug("entity_scanned",
				slog.String("domain", domain),
				slog.String("entity", entity),
				slog.Int("files", len(files)))
		}
	}

	return idx, nil
}

// wrapWalk classifies a traversal failure. Cancellation passes through
// unchanged.
func wrapWalk(path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, fs.ErrPermission) {
		return ierrors.New(ierrors.ErrCodeFilePermission,
			fmt.Sprintf("permission denied while walking %s", path), err).
			WithDetail("path", path)
	}
	return ierrors.WalkError(path, err)
}
