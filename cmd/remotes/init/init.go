// Package initcmder provides the init command for initializing a local
// .remotes directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .remotes/ directory in the current working directory.

Creates a local .remotes/ directory that takes precedence over the default
~/.remotes/ directory for the remote branch store, configuration, the
repository lock and the SQLite revision graph.

This is useful for keeping separate remote state per repository.

Examples:
  remotes init`

const initShortDesc string = "Initialize a local .remotes/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd)
		},
	}

	return cmd
}

func runInit(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	out := cmd.OutOrStdout()

	info, err := os.Stat(filepath.Join(cwd, ".remotes"))
	if err == nil && info.IsDir() {
		fmt.Fprintf(out, "Already initialized: %s\n", filepath.Join(cwd, ".remotes"))
		return nil
	}

	dir, err := dotdir.NewManager().Init(cwd)
	if err != nil {
		return fmt.Errorf("creating .remotes directory: %w", err)
	}

	fmt.Fprintf(out, "Initialized .remotes directory: %s\n", dir)
	return nil
}
