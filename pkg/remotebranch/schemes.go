package remotebranch

import (
	"strconv"
	"strings"
)

// ExpandScheme expands a "name://rest" URI through the template configured for
// name. Templates reference path segments of rest as {1}..{N}; rest is split
// into at most N segments and anything past the last one is appended as is.
//
// URIs without a configured scheme are returned unchanged.
func ExpandScheme(schemes map[string]string, uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	tmpl, ok := schemes[scheme]
	if !ok {
		return uri
	}

	n := placeholderCount(tmpl)
	if n == 0 {
		return tmpl + rest
	}

	parts := strings.SplitN(rest, "/", n+1)
	tail := ""
	if len(parts) > n {
		tail = parts[n]
		parts = parts[:n]
	}

	out := tmpl
	for i := n; i >= 1; i-- {
		val := ""
		if i <= len(parts) {
			val = parts[i-1]
		}
		out = strings.ReplaceAll(out, "{"+strconv.Itoa(i)+"}", val)
	}

	return out + tail
}

// placeholderCount returns the highest {N} placeholder used by tmpl.
func placeholderCount(tmpl string) int {
	highest := 0
	for {
		start := strings.IndexByte(tmpl, '{')
		if start < 0 {
			return highest
		}
		end := strings.IndexByte(tmpl[start:], '}')
		if end < 0 {
			return highest
		}

		if n, err := strconv.Atoi(tmpl[start+1 : start+end]); err == nil && n > highest {
			highest = n
		}
		tmpl = tmpl[start+end+1:]
	}
}
