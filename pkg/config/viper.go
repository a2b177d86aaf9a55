package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/remotes/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the REMOTES_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (REMOTES_GRAPH_BACKEND, REMOTES_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: REMOTES_GRAPH_BACKEND, REMOTES_LOCK_TIMEOUT, etc.
	v.SetEnvPrefix("REMOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Remote branches
	v.SetDefault("remotebranches.upstream", d.RemoteBranches.Upstream)
	v.SetDefault("remotebranches.alias_default", d.RemoteBranches.AliasDefault)

	// Graph
	v.SetDefault("graph.backend", d.Graph.Backend)
	v.SetDefault("graph.sqlite_path", d.Graph.SQLitePath)
	v.SetDefault("graph.git_dir", d.Graph.GitDir)

	// Lock
	v.SetDefault("lock.timeout", d.Lock.Timeout)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}

// ApplyViper overlays the scalar settings resolved by v onto cfg. Paths and
// schemes are keyed by user-chosen names and only come from config.toml.
func ApplyViper(cfg *Config, v *viper.Viper) {
	cfg.RemoteBranches.Upstream = v.GetStringSlice("remotebranches.upstream")
	cfg.RemoteBranches.AliasDefault = v.GetBool("remotebranches.alias_default")

	cfg.Graph.Backend = v.GetString("graph.backend")
	cfg.Graph.SQLitePath = v.GetString("graph.sqlite_path")
	cfg.Graph.GitDir = v.GetString("graph.git_dir")

	cfg.Lock.Timeout = v.GetString("lock.timeout")
	cfg.API.Listen = v.GetString("api.listen")

	cfg.Events.Provider = v.GetString("events.provider")
	cfg.Events.Brokers = v.GetStringSlice("events.brokers")
	cfg.Events.Topic = v.GetString("events.topic")
}
