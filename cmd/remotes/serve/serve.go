// Package servecmder provides the serve command running the query API.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/api"
	"github.com/papercomputeco/remotes/api/mcp"
	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
	"github.com/papercomputeco/remotes/pkg/config"
	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/remotebranch"
)

type ServeCommander struct {
	listen  string
	logFile string
	noMCP   bool
	noWatch bool
}

const serveLongDesc string = `Run the remote branch query API.

Serves the remote branch table, preferred names, distances and the
upstream(), pushed() and remotebranches() predicates over HTTP, with
Prometheus metrics at /metrics and MCP tools at /mcp.

The store file is watched while serving, so saves made by other remotes
processes are picked up without a restart. Pass --no-watch to keep the
table fixed after its first build.

Examples:
  remotes serve
  remotes serve --listen :9090 --backend sqlite
  remotes serve --log-file remotes.log`

const serveShortDesc string = "Run the remote branch query API"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	repoenv.AddGraphFlags(cmd)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagAPIListen, &cmder.listen)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP server at /mcp")
	cmd.Flags().BoolVar(&cmder.noWatch, "no-watch", false, "Do not watch the store file for changes")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	env, err := repoenv.FromCommand(cmd, config.ServeFlags)
	if err != nil {
		return err
	}
	defer env.Close()

	l := env.Logger
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		debug, _ := cmd.Flags().GetBool("debug")
		l = logger.Multi(l, logger.New(
			logger.WithDebug(debug),
			logger.WithSource(debug),
			logger.WithJSON(true),
			logger.WithWriter(f),
		))
	}

	if !c.noWatch && env.Dir != "" {
		stop, err := remotebranch.Watch(env.Dir, env.Table, l)
		if err != nil {
			return err
		}
		defer stop()
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Repo:   env.Repo,
		Graph:  env.Graph,
		Noop:   c.noMCP,
		Logger: l,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr: env.Config.API.Listen,
		Registry:   env.Registry,
		Gatherer:   env.Prometheus,
	}
	if !c.noMCP {
		apiConfig.MCPHandler = mcpServer.Handler()
	}

	apiServer, err := api.NewServer(apiConfig, env.Repo, env.Graph, l)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	l.Info("serving remote branches",
		slog.String("api_addr", apiConfig.ListenAddr),
		slog.String("backend", env.Config.Graph.Backend),
		slog.String("dir", env.Dir),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		l.Info("received signal, shutting down", slog.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}
