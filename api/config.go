// Package api provides an HTTP API server for querying tracked remote branches.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/papercomputeco/remotes/pkg/registry"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8083")
	ListenAddr string

	// Registry holds the predicates served under /v1/revsets and the keywords
	// rendered for /v1/revisions.
	Registry *registry.Registry

	// Gatherer enables /metrics when set.
	Gatherer prometheus.Gatherer

	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler
}
