package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/remotebranch"
	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// Server is the API server for the remote branch table of one repository.
type Server struct {
	config Config
	repo   *remotebranch.Repo
	graph  revgraph.Graph
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The repo and graph are injected so the server shares the table (and its
// invalidation) with the rest of the process.
func NewServer(config Config, repo *remotebranch.Repo, graph revgraph.Graph, l *slog.Logger) (*Server, error) {
	if repo == nil {
		return nil, errors.New("remote branch repo is required")
	}
	if graph == nil {
		return nil, errors.New("revision graph is required")
	}
	if config.Registry == nil {
		return nil, errors.New("registry is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		repo:   repo,
		graph:  graph,
		logger: logger.OrNop(l),
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/remotebranches", s.handleListBranches)
	app.Get("/v1/remotebranches/preferred", s.handleListPreferred)
	app.Post("/v1/remotebranches/refresh", s.handleRefresh)
	app.Get("/v1/revisions/:hash", s.handleGetRevision)
	app.Get("/v1/revisions/:hash/distance", s.handleGetDistance)
	app.Get("/v1/revsets/:name", s.handleRevset)

	if config.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{})))
	}
	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
