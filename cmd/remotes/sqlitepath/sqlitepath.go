// Package sqlitepath locates the SQLite revision graph.
package sqlitepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/remotes/pkg/config"
)

// ResolveSQLitePath returns the graph database path. An explicit override or
// REMOTES_SQLITE wins, then the first existing well-known location. When none
// exists the database is placed in stateDir.
func ResolveSQLitePath(override, stateDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("REMOTES_SQLITE")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates(stateDir) {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if stateDir != "" {
		return filepath.Join(stateDir, config.DefaultSQLiteFile), nil
	}

	return "", errors.New("could not find remotes SQLite graph; pass --sqlite")
}

func sqliteCandidates(stateDir string) []string {
	var candidates []string
	if stateDir != "" {
		candidates = append(candidates, filepath.Join(stateDir, config.DefaultSQLiteFile))
	}

	candidates = append(candidates, filepath.Join(".remotes", config.DefaultSQLiteFile))

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "remotes", config.DefaultSQLiteFile))
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".remotes", config.DefaultSQLiteFile))
	}

	return candidates
}
