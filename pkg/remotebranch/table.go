package remotebranch

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/metrics"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/store"
)

// Skip reasons reported to metrics.
const (
	skipUnresolved = "unresolved"
	skipInactive   = "inactive"
)

// Table is the lazily built mapping of qualified names to the revisions they
// pointed at when their remote was last seen. It is computed once from the
// store and then served from memory until Invalidate is called.
type Table struct {
	loader  store.Loader
	graph   revgraph.Graph
	logger  *slog.Logger
	metrics *metrics.Recorder

	mu         sync.Mutex
	computed   bool
	generation uint64
	branches   map[string]*revgraph.Revision
}

// NewTable creates a table over loader and graph. Nothing is read until the
// first access.
func NewTable(loader store.Loader, graph revgraph.Graph, l *slog.Logger, m *metrics.Recorder) *Table {
	return &Table{
		loader:  loader,
		graph:   graph,
		logger:  logger.OrNop(l),
		metrics: m,
	}
}

// Branches returns the table. The returned map is shared and must not be
// modified. Load and resolve faults degrade to missing entries.
func (t *Table) Branches(ctx context.Context) map[string]*revgraph.Revision {
	branches, _ := t.snapshot(ctx)
	return branches
}

// Lookup returns the revision a qualified name points at.
func (t *Table) Lookup(ctx context.Context, name string) (*revgraph.Revision, bool) {
	rev, ok := t.Branches(ctx)[name]
	return rev, ok
}

// NamesFor returns the sorted names pointing at hash.
func (t *Table) NamesFor(ctx context.Context, hash string) []string {
	var names []string
	for name, rev := range t.Branches(ctx) {
		if rev.Hash == hash {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Tips returns the distinct hashes of the revisions whose name passes filter,
// in name order. A nil filter selects every name.
func (t *Table) Tips(ctx context.Context, filter func(name string) bool) []string {
	branches := t.Branches(ctx)

	names := make([]string, 0, len(branches))
	for name := range branches {
		if filter == nil || filter(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	seen := make(map[string]struct{}, len(names))
	tips := make([]string, 0, len(names))
	for _, name := range names {
		hash := branches[name].Hash
		if _, ok := seen[hash]; ok {
			continue
		}
		seen[hash] = struct{}{}
		tips = append(tips, hash)
	}
	return tips
}

// Invalidate drops the cached table so the next access reloads the store.
func (t *Table) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.computed = false
	t.branches = nil
}

// snapshot returns the table and the generation it was built in.
func (t *Table) snapshot(ctx context.Context) (map[string]*revgraph.Revision, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.computed {
		t.branches = t.build(ctx)
		t.computed = true
		t.generation++
	}
	return t.branches, t.generation
}

func (t *Table) build(ctx context.Context) map[string]*revgraph.Revision {
	branches := make(map[string]*revgraph.Revision)

	records, err := t.loader.Load()
	if err != nil {
		t.logger.Warn("remote branches unavailable", "error", err)
		t.metrics.TableBuilt(0)
		return branches
	}

	for _, r := range records {
		rev, found, err := t.graph.Resolve(ctx, r.Hash)
		if err != nil {
			t.logger.Debug("resolving remote branch failed",
				"name", r.Name,
				"hash", r.Hash,
				"error", err,
			)
			t.metrics.Skipped(skipUnresolved)
			continue
		}
		if !found {
			t.logger.Debug("dropping unknown remote branch", "name", r.Name, "hash", r.Hash)
			t.metrics.Skipped(skipUnresolved)
			continue
		}
		if rev.Inactive() {
			t.metrics.Skipped(skipInactive)
			continue
		}
		branches[r.Name] = rev
	}

	t.metrics.TableBuilt(len(branches))
	t.logger.Debug("built remote branch table", "records", len(records), "names", len(branches))

	return branches
}
