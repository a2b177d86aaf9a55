package dotdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	workspaceFile = "workspace.json"
)

// WorkspaceState is the working copy state for graph backends that have no
// working copy of their own (sqlite and memory).
type WorkspaceState struct {
	// Hash is the checked-out revision.
	Hash string `json:"hash"`

	// Bookmark is the active bookmark, empty when none is active.
	Bookmark string `json:"bookmark,omitempty"`
}

// LoadWorkspaceState loads the workspace state from a target .remotes/workspace.json.
// Returns nil, nil if no workspace state exists.
func (m *Manager) LoadWorkspaceState(overrideDir string) (*WorkspaceState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, workspaceFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading workspace state: %w", err)
	}

	state := &WorkspaceState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing workspace state: %w", err)
	}

	return state, nil
}

// SaveWorkspace persists the workspace state to a target .remotes/workspace.json.
func (m *Manager) SaveWorkspace(state *WorkspaceState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil workspace state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling workspace state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, workspaceFile), data, 0o644); err != nil { //nolint:gosec // read by other tools
		return fmt.Errorf("writing workspace state: %w", err)
	}

	return nil
}

// ClearWorkspace removes the workspace state file.
// Returns nil if the file doesn't exist.
func (m *Manager) ClearWorkspace(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, workspaceFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing workspace state: %w", err)
	}

	return nil
}

// FileWorkspace reads the active bookmark from the persisted workspace state.
type FileWorkspace struct {
	manager *Manager
	dir     string
}

// Workspace returns a workspace view over the state in dir.
func (m *Manager) Workspace(dir string) *FileWorkspace {
	return &FileWorkspace{manager: m, dir: dir}
}

// ActiveBookmark returns the persisted active bookmark, or "" when there is
// no workspace state.
func (w *FileWorkspace) ActiveBookmark(_ context.Context) (string, error) {
	state, err := w.manager.LoadWorkspaceState(w.dir)
	if err != nil {
		return "", err
	}
	if state == nil {
		return "", nil
	}
	return state.Bookmark, nil
}
