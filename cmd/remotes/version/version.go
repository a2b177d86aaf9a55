// Package versioncmder
package versioncmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/remotes/pkg/cliui"
	"github.com/papercomputeco/remotes/pkg/utils"
)

type VersionCommander struct {
	out    io.Writer
	format string
}

// versionInfo is the structured form of the version output.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Sha       string `json:"sha" yaml:"sha"`
	Buildtime string `json:"buildtime" yaml:"buildtime"`
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			cmder.format, _ = cmd.Flags().GetString("output")
			return cmder.run()
		},
	}

	return cmd
}

func (c *VersionCommander) run() error {
	info := versionInfo{Version: utils.Version, Sha: utils.Sha, Buildtime: utils.Buildtime}

	return cliui.Render(c.out, c.format, info, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Version: %s\nSha: %s\nBuilt at: %s\n", info.Version, info.Sha, info.Buildtime)
		return err
	})
}
