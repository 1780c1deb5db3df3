package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/airspacemap/gen-file-index/internal/ignore"
)

// ignoreCacheSize bounds the number of parsed ignore files kept in memory.
const ignoreCacheSize = 1000

// Scanner lists entities and collects data files.
// It is not safe for concurrent use.
type Scanner struct {
	extensions ExtensionSet
	useIgnore  bool

	// ignoreCache maps a directory to its parsed .indexignore (nil if absent).
	ignoreCache *lru.Cache[string, *ignore.Matcher]
}

// New creates a Scanner.
func New(opts Options) (*Scanner, error) {
	if len(opts.Extensions) == 0 {
		return nil, fmt.Errorf("at least one extension is required")
	}

	cache, err := lru.New[string, *ignore.Matcher](ignoreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create ignore cache: %w", err)
	}

	return &Scanner{
		extensions:  ExtensionSet(slices.Clone(opts.Extensions)),
		useIgnore:   opts.RespectIgnoreFiles,
		ignoreCache: cache,
	}, nil
}

// MatchesExtension reports whether name carries a recognized extension.
func (s *Scanner) MatchesExtension(name string) bool {
	return s.extensions.Match(name)
}

// ListEntities returns the sorted names of the directories directly below
// domainDir. A missing domainDir yields (nil, nil). Files and symlinks at
// this level are not entities.
func (s *Scanner) ListEntities(ctx context.Context, domainDir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(domainDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", domainDir, err)
	}
	if !info.IsDir() {
		slog.Warn("domain_not_directory", slog.String("path", domainDir))
		return nil, nil
	}

	entries, err := os.ReadDir(domainDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", domainDir, err)
	}

	entities := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		entities = append(entities, e.Name())
	}
	slices.Sort(entities)

	return entities, nil
}

// ScanEntity walks entityDir without a depth limit and returns the sorted,
// slash-separated paths (relative to entityDir) of every file with a
// recognized extension. Any traversal error aborts the scan.
func (s *Scanner) ScanEntity(ctx context.Context, entityDir string) ([]string, error) {
	files := make([]string, 0)

	err := filepath.WalkDir(entityDir, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(entityDir, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.useIgnore {
				ignored, err := s.isIgnored(entityDir, rel, true)
				if err != nil {
					return err
				}
				if ignored {
					slog.Debug("dir_ignored", slog.String("path", path))
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !s.extensions.Match(d.Name()) {
			return nil
		}

		if s.useIgnore {
			ignored, err := s.isIgnored(entityDir, rel, false)
			if err != nil {
				return err
			}
			if ignored {
				slog.Debug("file_ignored", slog.String("path", path))
				return nil
			}
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// isIgnored applies the ignore files from entityDir down to the parent of
// rel. Deeper files are consulted last so they can override shallower ones.
func (s *Scanner) isIgnored(entityDir, rel string, isDir bool) (bool, error) {
	parts := strings.Split(rel, "/")
	ignored := false

	dir := entityDir
	for i := 0; i < len(parts); i++ {
		if i > 0 {
			dir = filepath.Join(dir, parts[i-1])
		}

		m, err := s.matcherFor(dir)
		if err != nil {
			return false, err
		}
		if m == nil {
			continue
		}

		sub := strings.Join(parts[i:], "/")
		if matched, verdict := m.Match(sub, isDir); matched {
			ignored = verdict
		}
	}

	return ignored, nil
}

// matcherFor returns the cached matcher for dir, parsing its ignore file on
// first use. Directories without an ignore file cache a nil matcher.
func (s *Scanner) matcherFor(dir string) (*ignore.Matcher, error) {
	if m, ok := s.ignoreCache.Get(dir); ok {
		return m, nil
	}

	path := filepath.Join(dir, ignore.FileName)
	m, err := ignore.ParseFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		m = nil
	} else {
		slog.Debug("ignore_file_loaded", slog.String("path", path), slog.Int("rules", m.Len()))
	}

	s.ignoreCache.Add(dir, m)
	return m, nil
}

// InvalidateIgnoreCache drops every cached ignore matcher.
func (s *Scanner) InvalidateIgnoreCache() {
	s.ignoreCache.Purge()
}
