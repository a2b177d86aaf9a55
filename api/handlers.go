package api

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/remotes/pkg/registry"
	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BranchEntry is one tracked name and the revision it points at.
type BranchEntry struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Rev  int    `json:"rev"`
}

// BranchesResponse lists tracked names sorted by name.
type BranchesResponse struct {
	Branches []BranchEntry `json:"branches"`
	Count    int           `json:"count"`
}

// RevisionResponse describes a revision with every registered display
// keyword rendered for it.
type RevisionResponse struct {
	Hash     string              `json:"hash"`
	Branch   string              `json:"branch"`
	Rev      int                 `json:"rev"`
	Keywords map[string][]string `json:"keywords"`
}

// DistanceResponse is the signed distance from a revision to a remote name.
type DistanceResponse struct {
	Hash     string `json:"hash"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// RevsetResponse lists the revisions a predicate selected, oldest first.
type RevsetResponse struct {
	Predicate string   `json:"predicate"`
	Revisions []string `json:"revisions"`
	Count     int      `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleListBranches(c *fiber.Ctx) error {
	return c.JSON(branchesResponse(s.repo.RemoteBranches(c.Context())))
}

func (s *Server) handleListPreferred(c *fiber.Ctx) error {
	return c.JSON(branchesResponse(s.repo.Preferred(c.Context())))
}

// handleRefresh drops the cached table so the next query re-reads the store.
func (s *Server) handleRefresh(c *fiber.Ctx) error {
	s.repo.Table().Invalidate()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGetRevision(c *fiber.Ctx) error {
	ctx := c.Context()

	rev, err := revgraph.MustResolve(ctx, s.graph, c.Params("hash"))
	if err != nil {
		return s.revisionError(c, err)
	}

	resp := RevisionResponse{
		Hash:     rev.Hash,
		Branch:   rev.Branch,
		Rev:      rev.Rev,
		Keywords: make(map[string][]string),
	}

	for _, name := range s.config.Registry.Keywords() {
		fn, _ := s.config.Registry.Keyword(name)
		values, err := fn(ctx, rev.Hash)
		if err != nil {
			s.logger.Error("rendering keyword failed", "keyword", name, "hash", rev.Hash, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to render " + name})
		}
		if values == nil {
			values = []string{}
		}
		resp.Keywords[name] = values
	}

	return c.JSON(resp)
}

func (s *Server) handleGetDistance(c *fiber.Ctx) error {
	ctx := c.Context()

	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "name query parameter is required"})
	}

	rev, err := revgraph.MustResolve(ctx, s.graph, c.Params("hash"))
	if err != nil {
		return s.revisionError(c, err)
	}

	d, err := s.repo.Distance(ctx, rev, name)
	if err != nil {
		s.logger.Error("computing distance failed", "hash", rev.Hash, "name", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to compute distance"})
	}

	return c.JSON(DistanceResponse{Hash: rev.Hash, Name: name, Distance: d})
}

// handleRevset evaluates a registered predicate over every revision in the
// graph.
func (s *Server) handleRevset(c *fiber.Ctx) error {
	ctx := c.Context()
	name := c.Params("name")

	all, err := s.graph.All(ctx)
	if err != nil {
		s.logger.Error("listing revisions failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list revisions"})
	}

	subset := make([]string, len(all))
	for i, rev := range all {
		subset[i] = rev.Hash
	}

	selected, err := s.config.Registry.Eval(ctx, name, subset, nil)
	if err != nil {
		if errors.Is(err, registry.ErrUnknown) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("evaluating predicate failed", "predicate", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to evaluate " + name})
	}

	return c.JSON(RevsetResponse{Predicate: name, Revisions: selected, Count: len(selected)})
}

func (s *Server) revisionError(c *fiber.Ctx, err error) error {
	var notFound revgraph.ErrNotFound
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}
	s.logger.Error("resolving revision failed", "hash", c.Params("hash"), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to resolve revision"})
}

func branchesResponse(branches map[string]*revgraph.Revision) BranchesResponse {
	entries := make([]BranchEntry, 0, len(branches))
	for name, rev := range branches {
		entries = append(entries, BranchEntry{Name: name, Hash: rev.Hash, Rev: rev.Rev})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return BranchesResponse{Branches: entries, Count: len(entries)}
}
