package config

import (
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --backend
// on both "remotes list" and "remotes serve").
type Flag struct {
	// Name is the long flag name (e.g. "backend").
	Name string

	// Shorthand is the one-letter short flag (e.g. "b"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "graph.backend").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBackend        = "backend"
	FlagSQLite         = "sqlite"
	FlagGitDir         = "git-dir"
	FlagLockTimeout    = "lock-timeout"
	FlagAPIListen      = "listen"
	FlagEventsProvider = "events-provider"
	FlagEventsTopic    = "events-topic"
	FlagAliasDefault   = "alias-default"
)

// GraphFlags are the flags every command that opens the revision graph takes.
var GraphFlags = FlagSet{
	FlagBackend: {Name: "backend", Shorthand: "b", ViperKey: "graph.backend", Description: "Revision graph backend (git, sqlite, memory)"},
	FlagSQLite:  {Name: "sqlite", ViperKey: "graph.sqlite_path", Description: "Path to the SQLite revision graph"},
	FlagGitDir:  {Name: "git-dir", ViperKey: "graph.git_dir", Description: "Git working tree used by the git backend"},
}

// GraphFlagKeys lists the registry keys of GraphFlags.
var GraphFlagKeys = []string{FlagBackend, FlagSQLite, FlagGitDir}

// SaveFlags are the flags of commands that rewrite the store.
var SaveFlags = FlagSet{
	FlagLockTimeout:    {Name: "lock-timeout", ViperKey: "lock.timeout", Description: "How long to wait for the repository lock (0s waits forever)"},
	FlagAliasDefault:   {Name: "alias-default", ViperKey: "remotebranches.alias_default", Description: "Also record default branch heads under the bare remote name"},
	FlagEventsProvider: {Name: "events-provider", ViperKey: "events.provider", Description: "Where state saved events are published (nop, kafka)"},
	FlagEventsTopic:    {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for state saved events"},
}

// ServeFlags are the flags of the serve command.
var ServeFlags = FlagSet{
	FlagAPIListen: {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for API server to listen on"},
}

// Keys returns the registry keys of fs, sorted.
func (fs FlagSet) Keys() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
