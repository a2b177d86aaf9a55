// Package remotebranch tracks the branches and bookmarks of remote
// repositories as they were at the last push or pull.
//
// A Repo reads the persisted store through a lazily built Table and answers
// display and query questions about it: which names point at a revision,
// which single name to show per revision, how far a revision is from a
// remote name, and which revisions are already on a remote. A Saver records
// the outcome of an exchange into the store.
package remotebranch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// Options configures a Repo.
type Options struct {
	// Paths are the configured remotes, in configuration order.
	Paths []Path

	// Schemes maps URI scheme names to expansion templates.
	Schemes map[string]string

	// Upstream is the allow-list of remotes for the upstream predicate. Empty
	// means every remote.
	Upstream []string

	// Workspace reports the active bookmark. Nil means none is ever active.
	Workspace revgraph.Workspace

	Logger *slog.Logger
}

// Repo is the remote branch view of one repository handle.
type Repo struct {
	table     *Table
	graph     revgraph.Graph
	workspace revgraph.Workspace
	paths     []Path
	schemes   map[string]string
	upstream  []string
	logger    *slog.Logger

	mu             sync.Mutex
	preferred      map[string]*revgraph.Revision
	preferredBuilt uint64
}

// NewRepo creates a Repo serving table over graph.
func NewRepo(table *Table, graph revgraph.Graph, opts Options) *Repo {
	return &Repo{
		table:     table,
		graph:     graph,
		workspace: opts.Workspace,
		paths:     opts.Paths,
		schemes:   opts.Schemes,
		upstream:  opts.Upstream,
		logger:    logger.OrNop(opts.Logger),
	}
}

// Table returns the underlying remote branch table.
func (r *Repo) Table() *Table {
	return r.table
}

// Paths returns the configured paths.
func (r *Repo) Paths() []Path {
	return r.paths
}

// RemoteBranches returns every tracked name and its revision.
func (r *Repo) RemoteBranches(ctx context.Context) map[string]*revgraph.Revision {
	return r.table.Branches(ctx)
}

// Preferred returns the preferred name table. It is rebuilt only when the
// underlying table has been rebuilt.
func (r *Repo) Preferred(ctx context.Context) map[string]*revgraph.Revision {
	branches, gen := r.table.snapshot(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.preferred == nil || r.preferredBuilt != gen {
		r.preferred = PreferredNames(r.paths, branches)
		r.preferredBuilt = gen
	}
	return r.preferred
}

func (r *Repo) activeBookmark(ctx context.Context) string {
	if r.workspace == nil {
		return ""
	}
	name, err := r.workspace.ActiveBookmark(ctx)
	if err != nil {
		r.logger.Debug("reading active bookmark failed", "error", err)
		return ""
	}
	return name
}
