package logging

import (
	"os"
	"path/filepath"
)

// appDir is the per-user state directory name.
const appDir = ".gen-file-index"

// DefaultLogDir returns the default log directory (~/.gen-file-index/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDir, "logs")
	}
	return filepath.Join(home, appDir, "logs")
}

// DefaultLogPath returns the default debug log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "gen-file-index.log")
}
