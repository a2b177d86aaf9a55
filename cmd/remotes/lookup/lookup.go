// Package lookupcmder provides the lookup command.
package lookupcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
)

const lookupLongDesc string = `Print the full hash a revision key resolves to.

Tracked remote names are tried first, then hashes and unambiguous hash
prefixes from the revision graph.

Examples:
  remotes lookup origin/main
  remotes lookup 3f2a9c`

const lookupShortDesc string = "Resolve a remote name or hash prefix"

func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <key>",
		Short: lookupShortDesc,
		Long:  lookupLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := repoenv.FromCommand(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			rev, err := env.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rev.Hash)
			return err
		},
	}

	repoenv.AddGraphFlags(cmd)

	return cmd
}
