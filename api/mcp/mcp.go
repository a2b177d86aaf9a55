// Package mcp provides an MCP (Model Context Protocol) server exposing the
// remote branch table to agents.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/remotes/pkg/remotebranch"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/utils"
)

type Config struct {
	// Repo answers remote branch queries
	Repo *remotebranch.Repo

	// Graph resolves revision hashes and prefixes
	Graph revgraph.Graph

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the remote branch tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "remotes",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Repo == nil {
			return nil, errors.New("remote branch repo is required")
		}
		if c.Graph == nil {
			return nil, errors.New("revision graph is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        branchesToolName,
			Description: branchesDescription,
		}, s.handleBranches)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        distanceToolName,
			Description: distanceDescription,
		}, s.handleDistance)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// errorResult wraps a message in a tool error result.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
