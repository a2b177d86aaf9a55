// Package savecmder provides the save command, which records the branch and
// bookmark heads of a remote.
package savecmder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/cmd/remotes/repoenv"
	"github.com/papercomputeco/remotes/pkg/cliui"
	"github.com/papercomputeco/remotes/pkg/config"
	"github.com/papercomputeco/remotes/pkg/remotebranch"
	"github.com/papercomputeco/remotes/pkg/revgraph"
)

const saveLongDesc string = `Record the branch and bookmark heads of a remote.

Every stored name of the remote is replaced by the heads given here. Heads
are passed as name=rev pairs, where rev is a hash, an unambiguous prefix or
a tracked remote name. With --from-git the heads are read from the
remote-tracking refs of the git backend instead.

With --pull or --push the argument is the location that was exchanged with
(a configured path name or URI). It is matched against the configured paths
and nothing is recorded when no path matches. After a push, obsolete heads
are left out.

Examples:
  remotes save origin --branch default=3f2a9c --bookmark main=3f2a9c
  remotes save origin --from-git
  remotes save https://example.com/repo --pull --bookmark main=3f2a9c`

const saveShortDesc string = "Record the heads of a remote"

type saveCommander struct {
	branches  []string
	bookmarks []string
	fromGit   bool
	pull      bool
	push      bool

	lockTimeout    string
	aliasDefault   bool
	eventsProvider string
	eventsTopic    string
}

func NewSaveCmd() *cobra.Command {
	cmder := &saveCommander{}

	cmd := &cobra.Command{
		Use:   "save <remote>",
		Short: saveShortDesc,
		Long:  saveLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&cmder.branches, "branch", nil, "Named branch head as name=rev (repeatable)")
	cmd.Flags().StringArrayVar(&cmder.bookmarks, "bookmark", nil, "Bookmark as name=rev (repeatable)")
	cmd.Flags().BoolVar(&cmder.fromGit, "from-git", false, "Read heads from the remote-tracking refs of the git backend")
	cmd.Flags().BoolVar(&cmder.pull, "pull", false, "Treat the argument as a pulled-from location")
	cmd.Flags().BoolVar(&cmder.push, "push", false, "Treat the argument as a pushed-to location")
	cmd.MarkFlagsMutuallyExclusive("pull", "push")

	repoenv.AddGraphFlags(cmd)
	config.AddStringFlag(cmd, config.SaveFlags, config.FlagLockTimeout, &cmder.lockTimeout)
	config.AddBoolFlag(cmd, config.SaveFlags, config.FlagAliasDefault, &cmder.aliasDefault)
	config.AddStringFlag(cmd, config.SaveFlags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.SaveFlags, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *saveCommander) run(cmd *cobra.Command, remote string) error {
	env, err := repoenv.FromCommand(cmd, config.SaveFlags)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()

	snap, err := c.snapshot(cmd, env, remote)
	if err != nil {
		return err
	}

	publisher, err := repoenv.NewPublisher(env.Config.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()

	saver, err := env.Saver(publisher)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	msg := fmt.Sprintf("Saving %d heads of %s", snap.Len(), cliui.NameStyle.Render(remote))

	return cliui.Step(out, msg, func() error {
		switch {
		case c.pull:
			saver.AfterPull(ctx, remote, snap)
		case c.push:
			saver.AfterPush(ctx, remote, snap)
		default:
			return saver.SaveRemoteState(ctx, remote, snap, env.Config.RemoteBranches.AliasDefault)
		}
		return nil
	})
}

func (c *saveCommander) snapshot(cmd *cobra.Command, env *repoenv.Env, remote string) (remotebranch.Snapshot, error) {
	ctx := cmd.Context()

	if c.fromGit {
		if len(c.branches) > 0 || len(c.bookmarks) > 0 {
			return remotebranch.Snapshot{}, errors.New("--from-git cannot be combined with --branch or --bookmark")
		}

		g, ok := env.Graph.(*revgraph.GitGraph)
		if !ok {
			return remotebranch.Snapshot{}, fmt.Errorf("--from-git needs the git backend, not %q", env.Config.Graph.Backend)
		}

		branches, bookmarks, err := g.RemoteRefs(ctx, remote)
		if err != nil {
			return remotebranch.Snapshot{}, fmt.Errorf("reading remote refs of %s: %w", remote, err)
		}
		return remotebranch.Snapshot{Branches: branches, Bookmarks: bookmarks}, nil
	}

	snap := remotebranch.Snapshot{
		Branches:  make(map[string][]string),
		Bookmarks: make(map[string]string),
	}

	for _, pair := range c.branches {
		name, hash, err := parseHead(cmd, env, pair)
		if err != nil {
			return remotebranch.Snapshot{}, err
		}
		snap.Branches[name] = append(snap.Branches[name], hash)
	}

	for _, pair := range c.bookmarks {
		name, hash, err := parseHead(cmd, env, pair)
		if err != nil {
			return remotebranch.Snapshot{}, err
		}
		snap.Bookmarks[name] = hash
	}

	return snap, nil
}

// parseHead splits a name=rev pair and resolves rev to a full hash.
func parseHead(cmd *cobra.Command, env *repoenv.Env, pair string) (string, string, error) {
	name, key, ok := strings.Cut(pair, "=")
	if !ok || name == "" || key == "" {
		return "", "", fmt.Errorf("invalid head %q: expected name=rev", pair)
	}

	rev, err := env.Resolve(cmd.Context(), key)
	if err != nil {
		return "", "", fmt.Errorf("resolving head %s: %w", name, err)
	}
	return name, rev.Hash, nil
}
