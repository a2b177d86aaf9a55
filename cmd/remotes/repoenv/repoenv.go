// Package repoenv opens the remote branch engine of one repository from the
// resolved configuration of a command.
package repoenv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/sqlitepath"
	"github.com/papercomputeco/remotes/pkg/config"
	"github.com/papercomputeco/remotes/pkg/dotdir"
	"github.com/papercomputeco/remotes/pkg/eventstream"
	"github.com/papercomputeco/remotes/pkg/eventstream/kafka"
	"github.com/papercomputeco/remotes/pkg/eventstream/nop"
	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/metrics"
	"github.com/papercomputeco/remotes/pkg/registry"
	"github.com/papercomputeco/remotes/pkg/remotebranch"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/store"
)

// Options configures Open.
type Options struct {
	// Dir is the resolved .remotes/ directory holding the store.
	Dir string

	Config *config.Config
	Logger *slog.Logger
}

// Env is an opened repository: its graph, store, table and the query
// surface registered over them.
type Env struct {
	Dir    string
	Config *config.Config
	Logger *slog.Logger

	Graph     revgraph.Graph
	Workspace revgraph.Workspace
	Store     *store.File
	Table     *remotebranch.Table
	Repo      *remotebranch.Repo
	Registry  *registry.Registry

	Metrics    *metrics.Recorder
	Prometheus *prometheus.Registry

	closers []func() error
}

// Open builds the engine described by opts.
func Open(ctx context.Context, opts Options) (*Env, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}

	e := &Env{
		Dir:        opts.Dir,
		Config:     opts.Config,
		Logger:     logger.OrNop(opts.Logger),
		Prometheus: prometheus.NewRegistry(),
	}
	e.Metrics = metrics.New(e.Prometheus)

	if err := e.openGraph(ctx); err != nil {
		return nil, err
	}

	e.Store = store.NewFile(e.Dir, e.Logger)
	e.Table = remotebranch.NewTable(e.Store, e.Graph, e.Logger, e.Metrics)
	e.Repo = remotebranch.NewRepo(e.Table, e.Graph, remotebranch.Options{
		Paths:     Paths(e.Config),
		Schemes:   e.Config.Schemes,
		Upstream:  e.Config.RemoteBranches.Upstream,
		Workspace: e.Workspace,
		Logger:    e.Logger,
	})

	e.Registry = registry.New()
	if err := remotebranch.Register(e.Registry, e.Repo); err != nil {
		e.Close()
		return nil, fmt.Errorf("registering remote branch queries: %w", err)
	}

	return e, nil
}

func (e *Env) openGraph(ctx context.Context) error {
	switch e.Config.Graph.Backend {
	case config.BackendGit:
		g := revgraph.NewGitGraph(e.Config.Graph.GitDir)
		if !g.IsRepo(ctx) {
			return fmt.Errorf("not a git repository: %s", e.Config.Graph.GitDir)
		}
		e.Graph, e.Workspace = g, g
		e.Logger.Debug("using git revision graph", "dir", e.Config.Graph.GitDir)

	case config.BackendSQLite:
		path, err := sqlitepath.ResolveSQLitePath(e.Config.Graph.SQLitePath, e.Dir)
		if err != nil {
			return err
		}
		g, err := revgraph.NewSQLiteGraph(path)
		if err != nil {
			return fmt.Errorf("opening SQLite graph: %w", err)
		}
		e.Graph = g
		e.Workspace = dotdir.NewManager().Workspace(e.Dir)
		e.closers = append(e.closers, g.Close)
		e.Logger.Debug("using SQLite revision graph", "path", path)

	case config.BackendMemory:
		e.Graph = revgraph.NewMemory()
		e.Workspace = dotdir.NewManager().Workspace(e.Dir)
		e.Logger.Debug("using in-memory revision graph")

	default:
		return fmt.Errorf("unknown graph backend %q", e.Config.Graph.Backend)
	}

	return nil
}

// Saver returns a Saver writing to the store under the repository lock.
func (e *Env) Saver(publisher eventstream.Publisher) (*remotebranch.Saver, error) {
	timeout, err := e.Config.LockTimeout()
	if err != nil {
		return nil, err
	}

	return remotebranch.NewSaver(e.Store, e.Graph, remotebranch.SaverOptions{
		Paths:        Paths(e.Config),
		Schemes:      e.Config.Schemes,
		AliasDefault: e.Config.RemoteBranches.AliasDefault,
		Lock: func(ctx context.Context) (func() error, error) {
			return dotdir.Lock(ctx, e.Dir, timeout)
		},
		Publisher: publisher,
		Metrics:   e.Metrics,
		Logger:    e.Logger,
	}), nil
}

// Resolve maps a tracked remote name, full hash or unambiguous hash prefix
// to a revision.
func (e *Env) Resolve(ctx context.Context, key string) (*revgraph.Revision, error) {
	lookup := remotebranch.NewLookup(e.Repo, remotebranch.GraphLookup(e.Graph))

	hash, err := lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return revgraph.MustResolve(ctx, e.Graph, hash)
}

// SQLiteGraph returns the graph when the SQLite backend is configured.
func (e *Env) SQLiteGraph() (*revgraph.SQLiteGraph, bool) {
	g, ok := e.Graph.(*revgraph.SQLiteGraph)
	return g, ok
}

// Close releases the graph.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Paths converts the configured paths.
func Paths(cfg *config.Config) []remotebranch.Path {
	paths := make([]remotebranch.Path, len(cfg.Paths))
	for i, p := range cfg.Paths {
		paths[i] = remotebranch.Path{Name: p.Name, URI: p.URI}
	}
	return paths
}

// NewPublisher builds the state saved event publisher the events section
// selects.
func NewPublisher(cfg config.EventsConfig) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", config.EventsNop:
		return nop.NewPublisher(), nil
	case config.EventsKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers:      cfg.Brokers,
			Topic:        cfg.Topic,
			WriteTimeout: 10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown events provider %q", cfg.Provider)
}

// AddGraphFlags registers the graph flags on cmd. Their values reach the
// configuration through FromCommand.
func AddGraphFlags(cmd *cobra.Command) {
	var backend, sqlite, gitDir string
	config.AddStringFlag(cmd, config.GraphFlags, config.FlagBackend, &backend)
	config.AddStringFlag(cmd, config.GraphFlags, config.FlagSQLite, &sqlite)
	config.AddStringFlag(cmd, config.GraphFlags, config.FlagGitDir, &gitDir)
}

// LoadConfig resolves the .remotes/ directory and configuration for cmd.
// Precedence is flag, then REMOTES_* environment, then config.toml, then
// defaults. Flags from GraphFlags and every FlagSet in extra are bound.
func LoadConfig(cmd *cobra.Command, extra ...config.FlagSet) (string, *config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", nil, err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return "", nil, fmt.Errorf("loading config: %w", err)
	}
	cfg, err := cfger.LoadConfig()
	if err != nil {
		return "", nil, err
	}

	v, err := config.InitViper(dir)
	if err != nil {
		return "", nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.GraphFlags, config.GraphFlagKeys)
	for _, fs := range extra {
		config.BindRegisteredFlags(v, cmd, fs, fs.Keys())
	}
	config.ApplyViper(cfg, v)

	return dir, cfg, nil
}

// FromCommand opens the repository for cmd. The logger writes to the
// command's stderr.
func FromCommand(cmd *cobra.Command, extra ...config.FlagSet) (*Env, error) {
	dir, cfg, err := LoadConfig(cmd, extra...)
	if err != nil {
		return nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	l := logger.New(
		logger.WithDebug(debug),
		logger.WithSource(debug),
		logger.WithPretty(true),
		logger.WithWriter(cmd.ErrOrStderr()),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return Open(ctx, Options{Dir: dir, Config: cfg, Logger: l})
}
