package revgraph

import (
	"context"
	"errors"
)

// Graph defines the revision graph operations the remote branch engine needs.
// Implementations are owned by the host and shared with it.
type Graph interface {
	// Resolve looks up a revision by its full hash or an unambiguous hex prefix.
	// A missing or ambiguous hash is reported with found == false, not an error.
	Resolve(ctx context.Context, hash string) (rev *Revision, found bool, err error)

	// Ancestors returns the hashes of every revision reachable from heads,
	// heads included. Unknown heads are ignored.
	Ancestors(ctx context.Context, heads []string) (map[string]struct{}, error)

	// AncestorsDifference counts the revisions reachable from high that are
	// not reachable from low.
	AncestorsDifference(ctx context.Context, low, high string) (int, error)

	// All returns every revision in graph order.
	All(ctx context.Context) ([]*Revision, error)
}

// Workspace exposes the host's working copy state.
type Workspace interface {
	// ActiveBookmark returns the active bookmark, or "" when none is active.
	ActiveBookmark(ctx context.Context) (string, error)
}

// ErrNotFound is returned when a revision doesn't exist in the graph.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "revision not found"
	}

	return "revision not found: " + e.Hash
}

// ErrInvalidRevision is returned when a revision cannot be added to a graph.
var ErrInvalidRevision = errors.New("invalid revision")

// MustResolve is Resolve for callers that treat a miss as an error.
func MustResolve(ctx context.Context, g Graph, hash string) (*Revision, error) {
	rev, found, err := g.Resolve(ctx, hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound{Hash: hash}
	}
	return rev, nil
}

// isHex reports whether s is a non-empty lowercase or uppercase hex string.
func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
