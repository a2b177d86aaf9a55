// Package configcmder provides the config command for managing persistent
// remotes configuration stored in the .remotes/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent remotes configuration.

Configuration is stored as config.toml in the .remotes/ directory and provides
default values for command flags. CLI flags and REMOTES_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  paths.<name>, schemes.<name>,
  remotebranches.upstream, remotebranches.alias_default,
  graph.backend, graph.sqlite_path, graph.git_dir,
  lock.timeout, api.listen,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  remotes config set <key> <value>    Set a configuration value
  remotes config get <key>            Get a configuration value
  remotes config list                 List all configuration values

Examples:
  remotes config set paths.origin https://example.com/repo
  remotes config set schemes.gh https://github.com/{1}
  remotes config set remotebranches.upstream origin
  remotes config get graph.backend
  remotes config list`

const configShortDesc string = "Manage persistent remotes configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
