// Package dotdir manages the .remotes/ state directory.
//
// The state directory holds the persisted remote branch store, the revision
// graph database for non-git backends, the workspace state and the
// repository lock.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the remotes state directory.
	dirName = ".remotes"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .remotes/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.remotes/ dir
//  3. Home ~/.remotes/ dir, created if missing
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating remotes directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Init creates a .remotes/ directory under root and returns its absolute path.
func (m *Manager) Init(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		root = cwd
	}

	return m.Target(filepath.Join(root, dirName))
}

// localDirExists checks whether a .remotes/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
