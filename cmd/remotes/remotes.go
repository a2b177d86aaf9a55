// Package remotescmder
package remotescmder

import (
	"github.com/spf13/cobra"

	bookmarkcmder "github.com/papercomputeco/remotes/cmd/remotes/bookmark"
	configcmder "github.com/papercomputeco/remotes/cmd/remotes/config"
	distancecmder "github.com/papercomputeco/remotes/cmd/remotes/distance"
	graphcmder "github.com/papercomputeco/remotes/cmd/remotes/graph"
	initcmder "github.com/papercomputeco/remotes/cmd/remotes/init"
	listcmder "github.com/papercomputeco/remotes/cmd/remotes/list"
	lookupcmder "github.com/papercomputeco/remotes/cmd/remotes/lookup"
	revsetcmder "github.com/papercomputeco/remotes/cmd/remotes/revset"
	savecmder "github.com/papercomputeco/remotes/cmd/remotes/save"
	servecmder "github.com/papercomputeco/remotes/cmd/remotes/serve"
	showcmder "github.com/papercomputeco/remotes/cmd/remotes/show"
	versioncmder "github.com/papercomputeco/remotes/cmd/remotes/version"
	"github.com/papercomputeco/remotes/pkg/cliui"
)

const remotesLongDesc string = `Remotes tracks the branches and bookmarks of remote repositories as
they were at the last push or pull.

Record and inspect remote state using:
  remotes save origin --from-git     Record what git knows about origin
  remotes list                       List every tracked remote name
  remotes show <rev>                 Show the remote names of a revision
  remotes distance <rev> <name>      Count revisions between a revision and a name
  remotes revset pushed              Select revisions already on a remote
  remotes serve                      Run the API and MCP servers`

const remotesShortDesc string = "Remotes - remote branch tracking"

func NewRemotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "remotes",
		Short:        remotesShortDesc,
		Long:         remotesLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .remotes/ state directory")
	cmd.PersistentFlags().StringP("output", "o", cliui.FormatText, "Output format (text, json, yaml)")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(bookmarkcmder.NewBookmarkCmd())
	cmd.AddCommand(graphcmder.NewGraphCmd())
	cmd.AddCommand(savecmder.NewSaveCmd())
	cmd.AddCommand(listcmder.NewListCmd())
	cmd.AddCommand(showcmder.NewShowCmd())
	cmd.AddCommand(lookupcmder.NewLookupCmd())
	cmd.AddCommand(distancecmder.NewDistanceCmd())
	cmd.AddCommand(revsetcmder.NewRevsetCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
