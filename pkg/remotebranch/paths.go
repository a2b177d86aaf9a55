package remotebranch

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Path names that ActivePath only settles on when nothing else matches.
const (
	DefaultPath     = "default"
	DefaultPushPath = "default-push"
)

// Path is a configured remote: a short name and the URI it stands for.
type Path struct {
	Name string `json:"name" toml:"name" yaml:"name"`
	URI  string `json:"uri" toml:"uri" yaml:"uri"`
}

// ActivePath maps the location a push or pull talked to onto the name of the
// configured path with the same URI. Names other than default and
// default-push win over those two. It returns "" when no path matches.
func ActivePath(paths []Path, schemes map[string]string, remote string) string {
	local := isLocal(remote)
	target := strings.TrimRight(remote, "/")
	if local {
		target = strings.TrimRight(canonicalLocal(remote), "/")
	}

	active := ""
	for _, p := range paths {
		uri := expandPath(ExpandScheme(schemes, p.URI))
		switch {
		case local:
			uri = canonicalLocal(uri)
		case strings.HasPrefix(uri, "http"):
			uri = stripAuth(uri)
		}
		uri = strings.TrimRight(uri, "/")

		if uri != target {
			continue
		}
		active = p.Name
		if p.Name != DefaultPath && p.Name != DefaultPushPath {
			break
		}
	}

	return active
}

// LookupPath returns the URI configured for name.
func LookupPath(paths []Path, name string) (string, bool) {
	for _, p := range paths {
		if p.Name == name {
			return p.URI, true
		}
	}
	return "", false
}

// isLocal reports whether remote names a filesystem location rather than a URL.
func isLocal(remote string) bool {
	if strings.HasPrefix(remote, "file://") {
		return true
	}
	return !strings.Contains(remote, "://") && !strings.Contains(remote, "@")
}

// canonicalLocal makes p absolute with symlinks resolved, leaving it as is
// when it does not exist.
func canonicalLocal(p string) string {
	p = strings.TrimPrefix(p, "file://")
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = home + p[1:]
		}
	}
	return p
}

// stripAuth drops the user info of an http(s) URI.
func stripAuth(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	u.User = nil
	return u.String()
}
