package remotebranch

import (
	"sort"
	"strings"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// PreferredNames collapses the names in branches into one display name per
// revision per path scope. A scope holds the names starting with a configured
// path name. Within a scope, for two names of one revision:
//
//   - a "default" ref never replaces anything and is replaced by anything
//   - an alias (empty ref) is replaced by any named ref and replaces nothing
//   - two distinct named refs are both kept
//
// Scopes are folded independently and their results merged.
func PreferredNames(paths []Path, branches map[string]*revgraph.Revision) map[string]*revgraph.Revision {
	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)

	preferred := make(map[string]*revgraph.Revision)
	for _, p := range paths {
		inverse := make(map[string]string)

		for _, name := range names {
			if !strings.HasPrefix(name, p.Name) {
				continue
			}
			rev := branches[name]

			current, ok := inverse[rev.Hash]
			if !ok {
				inverse[rev.Hash] = name
				continue
			}

			_, ref1 := Split(current)
			remote, ref2 := Split(name)

			switch {
			case ref2 == revgraph.DefaultBranch:
			case ref1 == revgraph.DefaultBranch:
				inverse[rev.Hash] = Join(remote, ref2)
			case ref2 == "":
			case ref1 == "":
				inverse[rev.Hash] = Join(remote, ref2)
			case ref1 != ref2:
				preferred[Join(remote, ref2)] = rev
			}
		}

		for _, name := range inverse {
			preferred[name] = branches[name]
		}
	}

	return preferred
}
