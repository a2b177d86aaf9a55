package remotebranch

import (
	"context"
	"fmt"
	"strings"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// CurrentRef stands for the active bookmark, or the revision's branch when no
// bookmark is active.
const CurrentRef = "current"

// Distance returns the signed number of revisions between from and the
// revision tracked under name. It is positive when the remote is ahead of
// from, negative when it is behind and 0 when name is not tracked.
func (r *Repo) Distance(ctx context.Context, from *revgraph.Revision, name string) (int, error) {
	target, ok := r.table.Lookup(ctx, r.resolveName(ctx, from, name))
	if !ok {
		return 0, nil
	}

	a, b, sign := from, target, 1
	if a.Rev > b.Rev {
		a, b, sign = b, a, -1
	}

	span, err := r.graph.AncestorsDifference(ctx, a.Hash, b.Hash)
	if err != nil {
		return 0, fmt.Errorf("computing distance to %s: %w", name, err)
	}
	if span < 0 {
		span = -span
	}

	return sign * span, nil
}

// resolveName rewrites default path remotes to the configured path sharing
// their URI and expands the current ref.
func (r *Repo) resolveName(ctx context.Context, from *revgraph.Revision, name string) string {
	remote, ref := Split(name)

	if strings.Contains(remote, DefaultPath) {
		if uri, ok := LookupPath(r.paths, remote); ok && uri != "" {
			active := ActivePath(r.paths, r.schemes, ExpandScheme(r.schemes, uri))
			if active != "" && active != remote {
				remote = active
			}
		}
	}

	if ref == CurrentRef {
		ref = r.activeBookmark(ctx)
		if ref == "" {
			ref = from.Branch
		}
	}

	return Join(remote, ref)
}
