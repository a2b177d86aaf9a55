// Package graphcmder provides the graph command for maintaining the SQLite
// revision graph.
package graphcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
	"github.com/papercomputeco/remotes/pkg/cliui"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/utils"
)

const graphLongDesc string = `Maintain the SQLite revision graph.

The sqlite backend stores revisions in .remotes/graph.sqlite (or the path in
graph.sqlite_path). These subcommands add revisions to it and mark them
obsolete, which is how hosts without git feed the graph.

Examples:
  remotes graph add root
  remotes graph add "second" --parent 3f2a9c --branch stable
  remotes graph obsolete 3f2a9c
  remotes graph log`

const graphShortDesc string = "Maintain the SQLite revision graph"

func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: graphShortDesc,
		Long:  graphLongDesc,
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newObsoleteCmd())
	cmd.AddCommand(newLogCmd())

	return cmd
}

type addCommander struct {
	branch   string
	parents  []string
	closed   bool
	obsolete bool
}

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a revision and print its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.branch, "branch", revgraph.DefaultBranch, "Named branch of the revision")
	cmd.Flags().StringArrayVar(&cmder.parents, "parent", nil, "Parent revision (repeatable)")
	cmd.Flags().BoolVar(&cmder.closed, "closed", false, "Mark the revision as closing its branch head")
	cmd.Flags().BoolVar(&cmder.obsolete, "obsolete", false, "Mark the revision as obsolete")
	repoenv.AddGraphFlags(cmd)

	return cmd
}

func (c *addCommander) run(cmd *cobra.Command, content string) error {
	env, g, err := openSQLite(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()

	parents := make([]*revgraph.Revision, 0, len(c.parents))
	for _, key := range c.parents {
		p, err := env.Resolve(ctx, key)
		if err != nil {
			return fmt.Errorf("resolving parent: %w", err)
		}
		parents = append(parents, p)
	}

	rev := revgraph.NewRevision(c.branch, content, parents, revgraph.RevisionMeta{
		Closed:   c.closed,
		Obsolete: c.obsolete,
	})
	if _, err := g.Put(ctx, rev); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rev.Hash)
	return err
}

func newObsoleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obsolete <rev>",
		Short: "Mark a revision obsolete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, g, err := openSQLite(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			rev, err := env.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := g.MarkObsolete(cmd.Context(), rev.Hash); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is obsolete\n", cliui.SuccessMark, utils.ShortHash(rev.Hash))
			return nil
		},
	}

	repoenv.AddGraphFlags(cmd)

	return cmd
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List every revision, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := repoenv.FromCommand(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()

			revs, err := env.Graph.All(ctx)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("output")
			return cliui.Render(cmd.OutOrStdout(), format, revs, func(w io.Writer) error {
				for _, rev := range revs {
					names := env.Repo.RemoteBranchesFor(ctx, rev)

					flags := ""
					switch {
					case rev.Obsolete:
						flags = cliui.DimStyle.Render(" (obsolete)")
					case rev.Closed:
						flags = cliui.DimStyle.Render(" (closed)")
					}

					fmt.Fprintf(w, "%4d %s %s%s", rev.Rev, cliui.HashStyle.Render(utils.ShortHash(rev.Hash)), rev.Branch, flags)
					for _, n := range names {
						fmt.Fprintf(w, " %s", cliui.NameStyle.Render(n))
					}
					if _, err := fmt.Fprintln(w); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	repoenv.AddGraphFlags(cmd)

	return cmd
}

func openSQLite(cmd *cobra.Command) (*repoenv.Env, *revgraph.SQLiteGraph, error) {
	env, err := repoenv.FromCommand(cmd)
	if err != nil {
		return nil, nil, err
	}

	g, ok := env.SQLiteGraph()
	if !ok {
		env.Close()
		return nil, nil, fmt.Errorf("graph commands need the sqlite backend, not %q", env.Config.Graph.Backend)
	}
	return env, g, nil
}
