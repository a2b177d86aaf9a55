package remotebranch

import (
	"context"
	"strings"
)

// Upstream returns the members of subset that are ancestors of (or equal to)
// a tip tracked for one of the upstream remotes. With no upstream remotes
// configured every tip counts.
func (r *Repo) Upstream(ctx context.Context, subset []string) ([]string, error) {
	return r.ancestorsOfTips(ctx, subset, r.upstreamFilter())
}

// Pushed returns the members of subset that are ancestors of (or equal to)
// any tracked tip.
func (r *Repo) Pushed(ctx context.Context, subset []string) ([]string, error) {
	return r.ancestorsOfTips(ctx, subset, nil)
}

// RemoteHeads returns the members of subset that are tracked tips
// themselves.
func (r *Repo) RemoteHeads(ctx context.Context, subset []string) ([]string, error) {
	tips := make(map[string]struct{})
	for _, rev := range r.table.Branches(ctx) {
		tips[rev.Hash] = struct{}{}
	}
	return filterSubset(subset, tips), nil
}

func (r *Repo) upstreamFilter() func(string) bool {
	if len(r.upstream) == 0 {
		return nil
	}

	prefixes := make([]string, len(r.upstream))
	for i, u := range r.upstream {
		prefixes[i] = u + "/"
	}

	return func(name string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

func (r *Repo) ancestorsOfTips(ctx context.Context, subset []string, filter func(string) bool) ([]string, error) {
	tips := r.table.Tips(ctx, filter)
	if len(tips) == 0 {
		return []string{}, nil
	}

	ancestors, err := r.graph.Ancestors(ctx, tips)
	if err != nil {
		return nil, err
	}
	return filterSubset(subset, ancestors), nil
}

// filterSubset keeps the members of subset found in set, in subset order.
func filterSubset(subset []string, set map[string]struct{}) []string {
	out := make([]string, 0, len(subset))
	for _, hash := range subset {
		if _, ok := set[hash]; ok {
			out = append(out, hash)
		}
	}
	return out
}
