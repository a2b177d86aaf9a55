// Package bookmarkcmder provides the bookmark command for the working copy
// state of graph backends without a working copy of their own.
package bookmarkcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/pkg/cliui"
	"github.com/papercomputeco/remotes/pkg/dotdir"
)

const bookmarkLongDesc string = `Show or set the active bookmark.

The sqlite and memory graph backends keep their working copy state in
.remotes/workspace.json. The active bookmark is what the "current" ref in
remote distances stands for. The git backend reads the checked out branch
instead and ignores this state.

Examples:
  remotes bookmark              Show the active bookmark
  remotes bookmark feature      Activate the feature bookmark
  remotes bookmark --clear      Deactivate any bookmark`

const bookmarkShortDesc string = "Show or set the active bookmark"

type bookmarkCommander struct {
	configDir string
	rev       string
	clear     bool
	out       io.Writer
}

func NewBookmarkCmd() *cobra.Command {
	cmder := &bookmarkCommander{}

	cmd := &cobra.Command{
		Use:   "bookmark [name]",
		Short: bookmarkShortDesc,
		Long:  bookmarkLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()

			if cmder.clear {
				return cmder.runClear()
			}
			if len(args) == 0 {
				return cmder.runShow()
			}
			return cmder.runSet(args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.rev, "rev", "", "Also record the checked out revision")
	cmd.Flags().BoolVar(&cmder.clear, "clear", false, "Clear the workspace state")

	return cmd
}

func (c *bookmarkCommander) runShow() error {
	state, err := dotdir.NewManager().LoadWorkspaceState(c.configDir)
	if err != nil {
		return err
	}
	if state == nil || state.Bookmark == "" {
		fmt.Fprintln(c.out, cliui.DimStyle.Render("no active bookmark"))
		return nil
	}

	fmt.Fprintln(c.out, state.Bookmark)
	return nil
}

func (c *bookmarkCommander) runSet(name string) error {
	m := dotdir.NewManager()

	state, err := m.LoadWorkspaceState(c.configDir)
	if err != nil {
		return err
	}
	if state == nil {
		state = &dotdir.WorkspaceState{}
	}

	state.Bookmark = name
	if c.rev != "" {
		state.Hash = c.rev
	}

	if err := m.SaveWorkspace(state, c.configDir); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s Active bookmark: %s\n", cliui.SuccessMark, cliui.NameStyle.Render(name))
	return nil
}

func (c *bookmarkCommander) runClear() error {
	if err := dotdir.NewManager().ClearWorkspace(c.configDir); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s Workspace state cleared\n", cliui.SuccessMark)
	return nil
}
