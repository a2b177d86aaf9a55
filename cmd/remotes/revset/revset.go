// Package revsetcmder provides the revset command, which evaluates a
// registered predicate over the revision graph.
package revsetcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
	"github.com/papercomputeco/remotes/pkg/cliui"
)

const revsetLongDesc string = `Select revisions with a remote branch predicate.

Predicates:
  upstream         ancestors of the heads of the upstream remotes
  pushed           ancestors of any tracked head
  remotebranches   the tracked heads themselves

The remotebranches.upstream key limits which remotes count as upstream;
unset, every remote does. Matching revisions are printed oldest first.

Examples:
  remotes revset pushed
  remotes revset upstream -o json`

const revsetShortDesc string = "Select revisions with a remote branch predicate"

// Result is the structured form of the output.
type Result struct {
	Predicate string   `json:"predicate" yaml:"predicate"`
	Revisions []string `json:"revisions" yaml:"revisions"`
}

func NewRevsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revset <predicate>",
		Short: revsetShortDesc,
		Long:  revsetLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	repoenv.AddGraphFlags(cmd)

	return cmd
}

func run(cmd *cobra.Command, predicate string) error {
	env, err := repoenv.FromCommand(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()

	if _, ok := env.Registry.Predicate(predicate); !ok {
		return fmt.Errorf("unknown predicate %q (available: %s)", predicate, strings.Join(env.Registry.Predicates(), ", "))
	}

	all, err := env.Graph.All(ctx)
	if err != nil {
		return fmt.Errorf("listing revisions: %w", err)
	}
	subset := make([]string, len(all))
	for i, rev := range all {
		subset[i] = rev.Hash
	}

	selected, err := env.Registry.Eval(ctx, predicate, subset, nil)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")

	return cliui.Render(cmd.OutOrStdout(), format, Result{Predicate: predicate, Revisions: selected}, func(w io.Writer) error {
		for _, hash := range selected {
			if _, err := fmt.Fprintln(w, hash); err != nil {
				return err
			}
		}
		return nil
	})
}
