package remotebranch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/papercomputeco/remotes/pkg/eventstream"
	"github.com/papercomputeco/remotes/pkg/eventstream/nop"
	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/metrics"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/store"
)

// Snapshot is what an exchange reported about a remote: the heads of every
// branch and the target of every bookmark.
type Snapshot struct {
	Branches  map[string][]string `json:"branches" yaml:"branches"`
	Bookmarks map[string]string   `json:"bookmarks" yaml:"bookmarks"`
}

// Len returns the number of heads in the snapshot.
func (s Snapshot) Len() int {
	n := len(s.Bookmarks)
	for _, heads := range s.Branches {
		n += len(heads)
	}
	return n
}

// Records turns a snapshot of remote into store records. Branch heads come
// first, by branch name, then bookmarks by name. With aliasDefault set, every
// head of the default branch of a remote other than "default" is also
// recorded under the bare remote name.
func Records(remote string, snap Snapshot, aliasDefault bool) []store.Record {
	var records []store.Record

	for _, branch := range sortedKeys(snap.Branches) {
		for _, hash := range snap.Branches[branch] {
			records = append(records, store.Record{Hash: hash, Name: Join(remote, branch)})
			if aliasDefault && remote != DefaultPath && branch == revgraph.DefaultBranch {
				records = append(records, store.Record{Hash: hash, Name: remote})
			}
		}
	}

	for _, bookmark := range sortedKeys(snap.Bookmarks) {
		records = append(records, store.Record{Hash: snap.Bookmarks[bookmark], Name: Join(remote, bookmark)})
	}

	return records
}

// LockFunc acquires the repository lock and returns its release func.
type LockFunc func(ctx context.Context) (release func() error, err error)

// SaverOptions configures a Saver.
type SaverOptions struct {
	Paths        []Path
	Schemes      map[string]string
	AliasDefault bool

	// Lock guards every rewrite. Nil saves without locking.
	Lock LockFunc

	// Publisher receives an event after every successful save. Nil publishes
	// nothing.
	Publisher eventstream.Publisher

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Saver records exchange outcomes in the store.
type Saver struct {
	rewriter     store.Rewriter
	graph        revgraph.Graph
	paths        []Path
	schemes      map[string]string
	aliasDefault bool
	lock         LockFunc
	publisher    eventstream.Publisher
	metrics      *metrics.Recorder
	logger       *slog.Logger
}

// NewSaver creates a Saver writing through rewriter. graph is used to drop
// obsolete heads after a push.
func NewSaver(rewriter store.Rewriter, graph revgraph.Graph, opts SaverOptions) *Saver {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	return &Saver{
		rewriter:     rewriter,
		graph:        graph,
		paths:        opts.Paths,
		schemes:      opts.Schemes,
		aliasDefault: opts.AliasDefault,
		lock:         opts.Lock,
		publisher:    publisher,
		metrics:      opts.Metrics,
		logger:       logger.OrNop(opts.Logger),
	}
}

// SaveRemoteState replaces the stored records of remote with those of snap.
func (s *Saver) SaveRemoteState(ctx context.Context, remote string, snap Snapshot, aliasDefault bool) error {
	return s.save(ctx, remote, eventstream.ExchangeManual, snap, aliasDefault)
}

// AfterPull records the state a pull from location reported. Failures are
// logged and never returned.
func (s *Saver) AfterPull(ctx context.Context, location string, snap Snapshot) {
	s.afterExchange(ctx, location, eventstream.ExchangePull, snap)
}

// AfterPush records the state of location after a push, leaving out heads the
// local graph marks obsolete. Failures are logged and never returned.
func (s *Saver) AfterPush(ctx context.Context, location string, snap Snapshot) {
	s.afterExchange(ctx, location, eventstream.ExchangePush, s.withoutObsolete(ctx, snap))
}

func (s *Saver) afterExchange(ctx context.Context, location, exchange string, snap Snapshot) {
	path := ActivePath(s.paths, s.schemes, location)
	if path == "" {
		s.logger.Debug("no configured path for remote, not saving", "remote", location)
		return
	}

	if err := s.save(ctx, path, exchange, snap, s.aliasDefault); err != nil {
		s.logger.Warn("remote branches not saved",
			"path", path,
			"exchange", exchange,
			"error", err,
		)
	}
}

func (s *Saver) save(ctx context.Context, remote, exchange string, snap Snapshot, aliasDefault bool) (err error) {
	start := time.Now()
	records := Records(remote, snap, aliasDefault)

	defer func() {
		s.metrics.Save(remote, exchange, err, len(records), float64(time.Since(start).Milliseconds()))
	}()

	if s.lock != nil {
		release, lockErr := s.lock(ctx)
		if lockErr != nil {
			return fmt.Errorf("locking repository: %w", lockErr)
		}
		defer func() {
			if relErr := release(); relErr != nil && err == nil {
				err = relErr
			}
		}()
	}

	if err := s.rewriter.Rewrite(remote, records); err != nil {
		return fmt.Errorf("saving remote branches for %s: %w", remote, err)
	}

	s.logger.Info("saved remote branches",
		"remote", remote,
		"exchange", exchange,
		"records", len(records),
	)

	s.publish(ctx, remote, exchange, records)

	return nil
}

func (s *Saver) publish(ctx context.Context, remote, exchange string, records []store.Record) {
	names := make([]eventstream.SavedName, len(records))
	for i, r := range records {
		names[i] = eventstream.SavedName{Hash: r.Hash, Name: r.Name}
	}

	if err := s.publisher.PublishStateSaved(ctx, eventstream.NewStateSavedEvent(remote, exchange, names)); err != nil {
		s.logger.Warn("publishing state saved event failed", "remote", remote, "error", err)
	}
}

// withoutObsolete drops branch heads that resolve to obsolete revisions.
// Heads the graph does not know are kept.
func (s *Saver) withoutObsolete(ctx context.Context, snap Snapshot) Snapshot {
	if s.graph == nil {
		return snap
	}

	branches := make(map[string][]string, len(snap.Branches))
	for branch, heads := range snap.Branches {
		kept := make([]string, 0, len(heads))
		for _, hash := range heads {
			rev, found, err := s.graph.Resolve(ctx, hash)
			if err == nil && found && rev.Obsolete {
				s.logger.Debug("dropping obsolete head", "name", branch, "hash", hash)
				continue
			}
			kept = append(kept, hash)
		}
		branches[branch] = kept
	}

	return Snapshot{Branches: branches, Bookmarks: snap.Bookmarks}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
