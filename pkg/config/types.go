package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent remotes configuration stored as config.toml
// in the .remotes/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version        int                  `toml:"version"`
	Paths          []PathConfig         `toml:"paths,omitempty"`
	Schemes        map[string]string    `toml:"schemes,omitempty"`
	RemoteBranches RemoteBranchesConfig `toml:"remotebranches"`
	Graph          GraphConfig          `toml:"graph"`
	Lock           LockConfig           `toml:"lock"`
	API            APIConfig            `toml:"api"`
	Events         EventsConfig         `toml:"events"`
}

// PathConfig is one configured remote. Order in the file is significant: it
// decides which path wins when several share a URI.
type PathConfig struct {
	Name string `toml:"name"`
	URI  string `toml:"uri"`
}

// RemoteBranchesConfig holds the tracking settings.
type RemoteBranchesConfig struct {
	// Upstream lists the remotes the upstream() predicate follows. Empty means
	// all of them.
	Upstream []string `toml:"upstream,omitempty"`

	// AliasDefault records the default branch of every remote under the bare
	// remote name as well.
	AliasDefault bool `toml:"alias_default,omitempty"`
}

// GraphConfig selects the revision graph backend.
type GraphConfig struct {
	// Backend is one of "git", "sqlite" or "memory".
	Backend    string `toml:"backend,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
	GitDir     string `toml:"git_dir,omitempty"`
}

// LockConfig holds repository lock settings.
type LockConfig struct {
	// Timeout is a Go duration string. "0s" waits forever.
	Timeout string `toml:"timeout,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EventsConfig selects where state saved events are published.
type EventsConfig struct {
	// Provider is one of "nop" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// LockTimeout parses Lock.Timeout.
func (c *Config) LockTimeout() (time.Duration, error) {
	if c.Lock.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Lock.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid value for lock.timeout: %w", err)
	}
	return d, nil
}

// PathURI returns the URI configured for the named path.
func (c *Config) PathURI(name string) (string, bool) {
	for _, p := range c.Paths {
		if p.Name == name {
			return p.URI, true
		}
	}
	return "", false
}

// SetPath adds or replaces the named path, keeping its position. An empty uri
// removes the path.
func (c *Config) SetPath(name, uri string) {
	for i, p := range c.Paths {
		if p.Name != name {
			continue
		}
		if uri == "" {
			c.Paths = append(c.Paths[:i], c.Paths[i+1:]...)
		} else {
			c.Paths[i].URI = uri
		}
		return
	}
	if uri != "" {
		c.Paths = append(c.Paths, PathConfig{Name: name, URI: uri})
	}
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all fixed config keys.
// Keys use dotted notation matching the TOML section structure. The
// "paths.<name>" and "schemes.<name>" families are resolved by lookupKey.
var configKeys = map[string]configKeyInfo{
	"remotebranches.upstream": {
		get: func(c *Config) string { return strings.Join(c.RemoteBranches.Upstream, ",") },
		set: func(c *Config, v string) error { c.RemoteBranches.Upstream = splitList(v); return nil },
	},
	"remotebranches.alias_default": {
		get: func(c *Config) string { return strconv.FormatBool(c.RemoteBranches.AliasDefault) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for remotebranches.alias_default: %w", err)
			}
			c.RemoteBranches.AliasDefault = b
			return nil
		},
	},
	"graph.backend": {
		get: func(c *Config) string { return c.Graph.Backend },
		set: func(c *Config, v string) error {
			if !isValidBackend(v) {
				return fmt.Errorf("invalid value for graph.backend: %q (available: %s)", v, strings.Join(ValidBackends(), ", "))
			}
			c.Graph.Backend = v
			return nil
		},
	},
	"graph.sqlite_path": {
		get: func(c *Config) string { return c.Graph.SQLitePath },
		set: func(c *Config, v string) error { c.Graph.SQLitePath = v; return nil },
	},
	"graph.git_dir": {
		get: func(c *Config) string { return c.Graph.GitDir },
		set: func(c *Config, v string) error { c.Graph.GitDir = v; return nil },
	},
	"lock.timeout": {
		get: func(c *Config) string { return c.Lock.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for lock.timeout: %w", err)
			}
			c.Lock.Timeout = v
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			if v != EventsNop && v != EventsKafka {
				return fmt.Errorf("invalid value for events.provider: %q (available: %s, %s)", v, EventsNop, EventsKafka)
			}
			c.Events.Provider = v
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = splitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}

// lookupKey resolves fixed keys and the dynamic paths.<name> and
// schemes.<name> keys.
func lookupKey(key string) (configKeyInfo, bool) {
	if info, ok := configKeys[key]; ok {
		return info, true
	}

	section, name, ok := strings.Cut(key, ".")
	if !ok || name == "" {
		return configKeyInfo{}, false
	}

	switch section {
	case "paths":
		return configKeyInfo{
			get: func(c *Config) string { uri, _ := c.PathURI(name); return uri },
			set: func(c *Config, v string) error { c.SetPath(name, v); return nil },
		}, true

	case "schemes":
		return configKeyInfo{
			get: func(c *Config) string { return c.Schemes[name] },
			set: func(c *Config, v string) error {
				if v == "" {
					delete(c.Schemes, name)
					return nil
				}
				if c.Schemes == nil {
					c.Schemes = make(map[string]string)
				}
				c.Schemes[name] = v
				return nil
			},
		}, true
	}

	return configKeyInfo{}, false
}

// DynamicKeys returns the paths.<name> and schemes.<name> keys set in cfg,
// paths in configuration order followed by schemes sorted by name.
func DynamicKeys(cfg *Config) []string {
	keys := make([]string, 0, len(cfg.Paths)+len(cfg.Schemes))
	for _, p := range cfg.Paths {
		keys = append(keys, "paths."+p.Name)
	}

	schemes := make([]string, 0, len(cfg.Schemes))
	for name := range cfg.Schemes {
		schemes = append(schemes, "schemes."+name)
	}
	sort.Strings(schemes)

	return append(keys, schemes...)
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
