package revgraph

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-memory Graph. It is used by tests and by hosts that build
// their graph on the fly.
type Memory struct {
	mu       sync.RWMutex
	revs     []*Revision
	index    map[string]*Revision
	bookmark string
}

// NewMemory creates an empty in-memory graph.
func NewMemory() *Memory {
	return &Memory{
		index: make(map[string]*Revision),
	}
}

// Add appends a revision to the graph and assigns its Rev. Every parent must
// already be in the graph. Adding a revision that is already present is a noop.
func (m *Memory) Add(rev *Revision) error {
	if rev == nil || rev.Hash == "" {
		return fmt.Errorf("%w: missing hash", ErrInvalidRevision)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.index[rev.Hash]; ok {
		rev.Rev = existing.Rev
		return nil
	}

	for _, p := range rev.Parents {
		if _, ok := m.index[p]; !ok {
			return fmt.Errorf("%w: parent %s of %s not in graph", ErrInvalidRevision, p, rev.Hash)
		}
	}

	rev.Rev = len(m.revs)
	m.revs = append(m.revs, rev)
	m.index[rev.Hash] = rev
	return nil
}

// SetActiveBookmark sets the bookmark reported by ActiveBookmark.
func (m *Memory) SetActiveBookmark(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookmark = name
}

// ActiveBookmark implements Workspace.
func (m *Memory) ActiveBookmark(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookmark, nil
}

// Resolve implements Graph.
func (m *Memory) Resolve(_ context.Context, hash string) (*Revision, bool, error) {
	if !isHex(hash) {
		return nil, false, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hash = strings.ToLower(hash)
	if rev, ok := m.index[hash]; ok {
		return rev, true, nil
	}

	var match *Revision
	for _, rev := range m.revs {
		if strings.HasPrefix(rev.Hash, hash) {
			if match != nil {
				// ambiguous prefix
				return nil, false, nil
			}
			match = rev
		}
	}

	return match, match != nil, nil
}

// Ancestors implements Graph.
func (m *Memory) Ancestors(_ context.Context, heads []string) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.reachable(heads, nil), nil
}

// AncestorsDifference implements Graph.
func (m *Memory) AncestorsDifference(_ context.Context, low, high string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.index[low]; !ok {
		return 0, ErrNotFound{Hash: low}
	}
	if _, ok := m.index[high]; !ok {
		return 0, ErrNotFound{Hash: high}
	}
	if low == high {
		return 0, nil
	}

	exclude := m.reachable([]string{low}, nil)
	include := m.reachable([]string{high}, exclude)
	return len(include), nil
}

// All implements Graph.
func (m *Memory) All(_ context.Context) ([]*Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Revision, len(m.revs))
	copy(out, m.revs)
	return out, nil
}

// reachable walks parents from heads without recursion, stopping at any
// revision in stop. The caller must hold the read lock.
func (m *Memory) reachable(heads []string, stop map[string]struct{}) map[string]struct{} {
	seen := make(map[string]struct{})
	queue := make([]string, 0, len(heads))

	for _, h := range heads {
		if _, ok := m.index[h]; ok {
			queue = append(queue, h)
		}
	}

	for len(queue) > 0 {
		hash := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if _, ok := seen[hash]; ok {
			continue
		}
		if _, ok := stop[hash]; ok {
			continue
		}
		seen[hash] = struct{}{}

		rev := m.index[hash]
		queue = append(queue, rev.Parents...)
	}

	return seen
}

var (
	_ Graph     = (*Memory)(nil)
	_ Workspace = (*Memory)(nil)
)
