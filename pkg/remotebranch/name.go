package remotebranch

import "strings"

// Split breaks a qualified name on its first "/" into the remote and the ref.
// A bare remote (alias form) yields an empty ref.
func Split(name string) (remote, ref string) {
	remote, ref, _ = strings.Cut(name, "/")
	return remote, ref
}

// Join builds a qualified name. An empty ref yields the bare remote.
func Join(remote, ref string) string {
	if ref == "" {
		return remote
	}
	return remote + "/" + ref
}
