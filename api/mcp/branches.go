package mcp

import (
	"context"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

var (
	branchesToolName    = "remote_branches"
	branchesDescription = "List the branches and bookmarks of remote repositories as recorded at the last push or pull. Optionally restrict to the names pointing at one revision, or to preferred names only."
)

// BranchesInput represents the input arguments for the remote_branches tool.
type BranchesInput struct {
	Hash      string `json:"hash,omitempty" jsonschema:"only return names pointing at this revision (full hash or unique prefix)"`
	Preferred bool   `json:"preferred,omitempty" jsonschema:"return one preferred name per remote instead of every alias"`
}

// Branch is a single tracked name.
type Branch struct {
	Name   string `json:"name"`
	Hash   string `json:"hash"`
	Branch string `json:"branch"`
}

// BranchesOutput represents the output of the remote_branches tool.
type BranchesOutput struct {
	Branches []Branch `json:"branches"`
	Count    int      `json:"count"`
}

func (s *Server) handleBranches(ctx context.Context, _ *mcp.CallToolRequest, input BranchesInput) (*mcp.CallToolResult, BranchesOutput, error) {
	s.config.Logger.Debug("MCP remote branches request",
		"hash", input.Hash,
		"preferred", input.Preferred,
	)

	table := s.config.Repo.RemoteBranches(ctx)
	if input.Preferred {
		table = s.config.Repo.Preferred(ctx)
	}

	want := ""
	if input.Hash != "" {
		rev, err := revgraph.MustResolve(ctx, s.config.Graph, input.Hash)
		if err != nil {
			return errorResult(fmt.Sprintf("Failed to resolve revision: %v", err)), BranchesOutput{}, nil
		}
		want = rev.Hash
	}

	out := BranchesOutput{Branches: []Branch{}}
	for name, rev := range table {
		if want != "" && rev.Hash != want {
			continue
		}
		out.Branches = append(out.Branches, Branch{Name: name, Hash: rev.Hash, Branch: rev.Branch})
	}
	sort.Slice(out.Branches, func(i, j int) bool { return out.Branches[i].Name < out.Branches[j].Name })
	out.Count = len(out.Branches)

	return nil, out, nil
}
