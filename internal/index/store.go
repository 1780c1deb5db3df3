package index

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/renameio"

	ierrors "github.com/airspacemap/gen-file-index/internal/errors"
)

// LockSuffix is appended to the output path to name its lock file.
const LockSuffix = ".lock"

// Lock is a cross-process advisory lock guarding one index file.
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewLock creates the lock for the index file at indexPath.
func NewLock(indexPath string) *Lock {
	lockPath := indexPath + LockSuffix
	return &Lock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock acquires the lock without blocking.
// It returns ErrCodeLockHeld if another process holds it.
func (l *Lock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return ierrors.WriteError(l.path, err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return ierrors.New(ierrors.ErrCodeWriteFailed,
			fmt.Sprintf("failed to acquire lock %s", l.path), err)
	}
	if !acquired {
		return ierrors.New(ierrors.ErrCodeLockHeld,
			fmt.Sprintf("index %s is being written by another process", l.indexPath()), nil).
			WithDetail("lock", l.path).
			WithSuggestion("Wait for the other run to finish and try again")
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. It is safe to call on an unlocked Lock.
func (l *Lock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

func (l *Lock) indexPath() string {
	return l.path[:len(l.path)-len(LockSuffix)]
}

// WriteFile persists idx at path. The file is replaced atomically, so
// readers see either the previous index or the complete new one.
func WriteFile(path string, idx Index) (err error) {
	data, err := idx.Marshal()
	if err != nil {
		return ierrors.InternalError("failed to encode index", err)
	}

	lock := NewLock(path)
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return ierrors.WriteError(path, err)
	}

	slog.Debug("index_written", slog.String("path", path), slog.Int("bytes", len(data)))
	return nil
}

// ReadFile loads an existing index file, returning the parsed index and
// the raw bytes. A missing file is reported with fs.ErrNotExist in the chain.
func ReadFile(path string) (Index, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
		return nil, nil, ierrors.WalkError(path, err)
	}

	idx, err := Parse(data)
	if err != nil {
		return nil, nil, ierrors.New(ierrors.ErrCodeIndexCorrupt,
			fmt.Sprintf("index %s is not valid", path), err).
			WithSuggestion("Delete the file and run gen-file-index again")
	}

	return idx, data, nil
}
