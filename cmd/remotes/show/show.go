// Package showcmder provides the show command, which renders the display
// keywords of one revision.
package showcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
	"github.com/papercomputeco/remotes/pkg/cliui"
)

const showLongDesc string = `Show the remote names of a revision.

Renders every registered display keyword for the revision:
  remotebranches            every tracked name pointing at it
  preferredremotebranches   the preferred names pointing at it
  remotedistance            name:distance for every preferred name

The revision may be a full hash, an unambiguous prefix or a tracked
remote name.

Examples:
  remotes show origin/main
  remotes show 3f2a9c -o yaml`

const showShortDesc string = "Show the remote names of a revision"

// Revision is the structured form of the output.
type Revision struct {
	Hash     string              `json:"hash" yaml:"hash"`
	Branch   string              `json:"branch" yaml:"branch"`
	Rev      int                 `json:"rev" yaml:"rev"`
	Keywords map[string][]string `json:"keywords" yaml:"keywords"`
}

func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <rev>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	repoenv.AddGraphFlags(cmd)

	return cmd
}

func run(cmd *cobra.Command, key string) error {
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

	out := Revision{
		Hash:     rev.Hash,
		Branch:   rev.Branch,
		Rev:      rev.Rev,
		Keywords: make(map[string][]string),
	}

	names := env.Registry.Keywords()
	for _, name := range names {
		fn, _ := env.Registry.Keyword(name)
		values, err := fn(ctx, rev.Hash)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		if values == nil {
			values = []string{}
		}
		out.Keywords[name] = values
	}

	format, _ := cmd.Flags().GetString("output")

	return cliui.Render(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
		fmt.Fprintf(w, "%s %s %s\n",
			cliui.HashStyle.Render(out.Hash),
			cliui.DimStyle.Render("on"),
			out.Branch,
		)

		width := 0
		for _, name := range names {
			width = max(width, len(name))
		}
		for _, name := range names {
			value := strings.Join(out.Keywords[name], " ")
			if value == "" {
				value = cliui.DimStyle.Render("-")
			}
			if _, err := fmt.Fprintf(w, "  %s  %s\n",
				cliui.KeyStyle.Render(fmt.Sprintf("%-*s", width, name)),
				value,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
