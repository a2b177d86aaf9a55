package config

// Graph backends.
const (
	BackendGit    = "git"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Event providers.
const (
	EventsNop   = "nop"
	EventsKafka = "kafka"
)

const (
	defaultBackend     = BackendGit
	defaultGitDir      = "."
	defaultLockTimeout = "60s"
	defaultAPIListen   = ":8083"

	defaultEventsProvider = EventsNop
	defaultEventsTopic    = "remotes.state"

	// DefaultSQLiteFile is the graph database file name inside .remotes/ when
	// graph.sqlite_path is unset.
	DefaultSQLiteFile = "graph.sqlite"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Graph: GraphConfig{
			Backend: defaultBackend,
			GitDir:  defaultGitDir,
		},
		Lock: LockConfig{
			Timeout: defaultLockTimeout,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}

// ValidBackends returns the recognized graph backends.
func ValidBackends() []string {
	return []string{BackendGit, BackendSQLite, BackendMemory}
}

func isValidBackend(name string) bool {
	for _, b := range ValidBackends() {
		if b == name {
			return true
		}
	}
	return false
}
