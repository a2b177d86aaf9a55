// Package listcmder provides the list command, which prints the remote
// branch table.
package listcmder

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
	"github.com/papercomputeco/remotes/pkg/cliui"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/utils"
)

const listLongDesc string = `List the remote branches and bookmarks recorded at the last push or pull.

Every tracked name is printed with the revision it points at. Names whose
revision is missing from the graph, closed or obsolete are left out.

With --preferred, aliases of one revision are folded into a single
preferred name per configured path.

Examples:
  remotes list
  remotes list --preferred
  remotes list -o json`

const listShortDesc string = "List tracked remote names"

// Entry is one row of the listing.
type Entry struct {
	Name   string `json:"name" yaml:"name"`
	Hash   string `json:"hash" yaml:"hash"`
	Branch string `json:"branch" yaml:"branch"`
	Rev    int    `json:"rev" yaml:"rev"`
}

type listCommander struct {
	preferred bool
}

func NewListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVarP(&cmder.preferred, "preferred", "p", false, "Fold aliases into preferred names")
	repoenv.AddGraphFlags(cmd)

	return cmd
}

func (c *listCommander) run(cmd *cobra.Command) error {
	env, err := repoenv.FromCommand(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()

	table := env.Repo.RemoteBranches(ctx)
	if c.preferred {
		table = env.Repo.Preferred(ctx)
	}

	entries := Entries(table)
	format, _ := cmd.Flags().GetString("output")

	return cliui.Render(cmd.OutOrStdout(), format, entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, cliui.DimStyle.Render("no remote branches recorded"))
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, "%s  %s\n",
				cliui.HashStyle.Render(utils.ShortHash(e.Hash)),
				cliui.NameStyle.Render(e.Name),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Entries flattens a name table into rows sorted by name.
func Entries(table map[string]*revgraph.Revision) []Entry {
	entries := make([]Entry, 0, len(table))
	for name, rev := range table {
		entries = append(entries, Entry{Name: name, Hash: rev.Hash, Branch: rev.Branch, Rev: rev.Rev})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
