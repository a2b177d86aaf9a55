package remotebranch

import (
	"context"
	"sort"
	"strconv"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// RemoteBranchesFor returns the sorted names tracked at rev.
func (r *Repo) RemoteBranchesFor(ctx context.Context, rev *revgraph.Revision) []string {
	return r.table.NamesFor(ctx, rev.Hash)
}

// PreferredFor returns the sorted preferred names of rev.
func (r *Repo) PreferredFor(ctx context.Context, rev *revgraph.Revision) []string {
	var names []string
	for name, target := range r.Preferred(ctx) {
		if target.Hash == rev.Hash {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// RemoteDistances renders "name:distance" for every preferred name, sorted by
// name.
func (r *Repo) RemoteDistances(ctx context.Context, rev *revgraph.Revision) ([]string, error) {
	preferred := r.Preferred(ctx)

	names := make([]string, 0, len(preferred))
	for name := range preferred {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		d, err := r.Distance(ctx, rev, name)
		if err != nil {
			return nil, err
		}
		out = append(out, name+":"+strconv.Itoa(d))
	}
	return out, nil
}
