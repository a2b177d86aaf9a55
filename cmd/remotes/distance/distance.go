// Package distancecmder provides the distance command.
package distancecmder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
	"github.com/papercomputeco/remotes/pkg/cliui"
	"github.com/papercomputeco/remotes/pkg/remotebranch"
)

const distanceLongDesc string = `Count the revisions between a revision and a remote name.

The result is positive when the remote is ahead of the revision, negative
when it is behind and 0 when the name is not tracked. A remote named like
"default" is replaced by the configured path sharing its URI, and the ref
"current" stands for the active bookmark or the revision's branch.

Examples:
  remotes distance 3f2a9c origin/main
  remotes distance origin/feature default/current`

const distanceShortDesc string = "Count revisions between a revision and a remote name"

// Result is the structured form of the output.
type Result struct {
	Hash     string `json:"hash" yaml:"hash"`
	Name     string `json:"name" yaml:"name"`
	Distance int    `json:"distance" yaml:"distance"`
}

func NewDistanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distance <rev> <name>",
		Short: distanceShortDesc,
		Long:  distanceLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1])
		},
	}

	repoenv.AddGraphFlags(cmd)

	return cmd
}

func run(cmd *cobra.Command, key, name string) error {
	env, err := repoenv.FromCommand(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()

	rev, err := env.Resolve(ctx, key)
	if err != nil {
		return err
	}

	tmpl, ok := env.Registry.Template(remotebranch.TemplateRemoteDistance)
	if !ok {
		return fmt.Errorf("template function %q is not registered", remotebranch.TemplateRemoteDistance)
	}
	rendered, err := tmpl(ctx, rev.Hash, []string{name})
	if err != nil {
		return err
	}
	d, err := strconv.Atoi(rendered)
	if err != nil {
		return fmt.Errorf("parsing distance %q: %w", rendered, err)
	}

	format, _ := cmd.Flags().GetString("output")

	return cliui.Render(cmd.OutOrStdout(), format, Result{Hash: rev.Hash, Name: name, Distance: d}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, d)
		return err
	})
}
