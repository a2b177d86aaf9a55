package remotebranch

import (
	"context"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// TagTypeRemote marks tags contributed by remote branches.
const TagTypeRemote = "remote"

// Provider is the remote branch capability a host composes into its own
// revision lookup and tag listing.
type Provider interface {
	RemoteBranches(ctx context.Context) map[string]*revgraph.Revision
}

// LookupFunc resolves a user-supplied key to a revision hash.
type LookupFunc func(ctx context.Context, key string) (string, error)

// NewLookup returns a LookupFunc that maps tracked remote names to their
// revision hash before delegating to fallback. Keys that are not tracked
// names are passed through unchanged.
func NewLookup(p Provider, fallback LookupFunc) LookupFunc {
	return func(ctx context.Context, key string) (string, error) {
		if rev, ok := p.RemoteBranches(ctx)[key]; ok {
			key = rev.Hash
		}
		return fallback(ctx, key)
	}
}

// GraphLookup is a LookupFunc over a graph: full hashes and unambiguous
// prefixes resolve, anything else is revgraph.ErrNotFound.
func GraphLookup(g revgraph.Graph) LookupFunc {
	return func(ctx context.Context, key string) (string, error) {
		rev, err := revgraph.MustResolve(ctx, g, key)
		if err != nil {
			return "", err
		}
		return rev.Hash, nil
	}
}

// Tag is a named revision as listed by the host.
type Tag struct {
	Hash string `json:"hash" yaml:"hash"`
	Type string `json:"type" yaml:"type"`
}

// MergeTags adds every tracked remote name to tags with type "remote",
// replacing host tags of the same name.
func MergeTags(ctx context.Context, p Provider, tags map[string]Tag) map[string]Tag {
	if tags == nil {
		tags = make(map[string]Tag)
	}
	for name, rev := range p.RemoteBranches(ctx) {
		tags[name] = Tag{Hash: rev.Hash, Type: TagTypeRemote}
	}
	return tags
}

var _ Provider = (*Repo)(nil)

// MergeTags adds the repo's remote branches to tags.
func (r *Repo) MergeTags(ctx context.Context, tags map[string]Tag) map[string]Tag {
	return MergeTags(ctx, r, tags)
}
