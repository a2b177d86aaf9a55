package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

var (
	distanceToolName    = "remote_distance"
	distanceDescription = "Count the revisions between a revision and a remote name such as origin/main. Positive means the remote is ahead, negative means it is behind, 0 means the name is not tracked. The name origin/current uses the active bookmark."
)

// DistanceInput represents the input arguments for the remote_distance tool.
type DistanceInput struct {
	Hash string `json:"hash" jsonschema:"the revision to measure from (full hash or unique prefix)"`
	Name string `json:"name" jsonschema:"the remote name to measure to, e.g. origin/main"`
}

// DistanceOutput represents the output of the remote_distance tool.
type DistanceOutput struct {
	Hash     string `json:"hash"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

func (s *Server) handleDistance(ctx context.Context, _ *mcp.CallToolRequest, input DistanceInput) (*mcp.CallToolResult, DistanceOutput, error) {
	logger := s.config.Logger

	if input.Hash == "" || input.Name == "" {
		return errorResult("Both hash and name are required"), DistanceOutput{}, nil
	}

	rev, err := revgraph.MustResolve(ctx, s.config.Graph, input.Hash)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to resolve revision: %v", err)), DistanceOutput{}, nil
	}

	d, err := s.config.Repo.Distance(ctx, rev, input.Name)
	if err != nil {
		logger.Error("failed to compute distance", "hash", rev.Hash, "name", input.Name, "error", err)
		return errorResult(fmt.Sprintf("Failed to compute distance: %v", err)), DistanceOutput{}, nil
	}

	return nil, DistanceOutput{Hash: rev.Hash, Name: input.Name, Distance: d}, nil
}
