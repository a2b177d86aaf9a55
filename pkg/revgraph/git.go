package revgraph

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// GitGraph adapts a local git repository to the Graph contract by shelling out
// to the git binary. Git has no named branches in the revision itself, so
// every revision reports DefaultBranch and is never closed or obsolete.
type GitGraph struct {
	dir string
}

// NewGitGraph creates a graph over the git repository containing dir.
func NewGitGraph(dir string) *GitGraph {
	return &GitGraph{dir: dir}
}

// runGit executes a git command and returns trimmed stdout + error.
func (g *GitGraph) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo returns true if the graph directory is inside a git working tree.
func (g *GitGraph) IsRepo(ctx context.Context) bool {
	out, err := g.runGit(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Resolve implements Graph.
func (g *GitGraph) Resolve(ctx context.Context, hash string) (*Revision, bool, error) {
	if !isHex(hash) {
		return nil, false, nil
	}

	// --verify --quiet exits non-zero without output for unknown or ambiguous
	// names, which is a miss rather than a failure.
	full, err := g.runGit(ctx, "rev-parse", "--verify", "--quiet", hash+"^{commit}")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if full == "" {
		return nil, false, nil
	}

	line, err := g.runGit(ctx, "rev-list", "--parents", "-n", "1", full)
	if err != nil {
		return nil, false, err
	}

	fields := strings.Fields(line)
	rev := &Revision{
		Hash:   full,
		Branch: DefaultBranch,
	}
	if len(fields) > 1 {
		rev.Parents = fields[1:]
	}

	// The ancestor count grows strictly along every parent edge, which makes
	// it a valid graph order.
	count, err := g.runGit(ctx, "rev-list", "--count", full)
	if err != nil {
		return nil, false, err
	}
	rev.Rev, err = strconv.Atoi(count)
	if err != nil {
		return nil, false, fmt.Errorf("parsing ancestor count %q: %w", count, err)
	}

	return rev, true, nil
}

// Ancestors implements Graph.
func (g *GitGraph) Ancestors(ctx context.Context, heads []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})

	valid := make([]string, 0, len(heads))
	for _, h := range heads {
		if isHex(h) {
			valid = append(valid, h)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}

	args := append([]string{"rev-list", "--ignore-missing"}, valid...)
	list, err := g.runGit(ctx, args...)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(strings.NewReader(list))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out[line] = struct{}{}
		}
	}

	return out, scanner.Err()
}

// AncestorsDifference implements Graph.
func (g *GitGraph) AncestorsDifference(ctx context.Context, low, high string) (int, error) {
	count, err := g.runGit(ctx, "rev-list", "--count", high, "^"+low)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(count)
	if err != nil {
		return 0, fmt.Errorf("parsing rev-list count %q: %w", count, err)
	}
	return n, nil
}

// All implements Graph. Rev is the position in reverse topological order, so
// values are only comparable within a single call.
func (g *GitGraph) All(ctx context.Context) ([]*Revision, error) {
	list, err := g.runGit(ctx, "rev-list", "--all", "--topo-order", "--reverse", "--parents")
	if err != nil {
		return nil, err
	}

	var revs []*Revision
	scanner := bufio.NewScanner(strings.NewReader(list))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		rev := &Revision{
			Hash:   fields[0],
			Branch: DefaultBranch,
			Rev:    len(revs),
		}
		if len(fields) > 1 {
			rev.Parents = fields[1:]
		}
		revs = append(revs, rev)
	}

	return revs, scanner.Err()
}

// ActiveBookmark implements Workspace. The checked out git branch plays the
// role of the active bookmark; a detached HEAD has none.
func (g *GitGraph) ActiveBookmark(ctx context.Context) (string, error) {
	out, err := g.runGit(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// Head returns the full hash of the checked out revision.
func (g *GitGraph) Head(ctx context.Context) (string, error) {
	return g.runGit(ctx, "rev-parse", "--verify", "HEAD")
}

// RemoteRefs reads the remote-tracking refs git recorded for remote during its
// last fetch or push. Every tracking branch is reported as a bookmark; the
// remote's HEAD, when known, is reported as the head of DefaultBranch.
func (g *GitGraph) RemoteRefs(ctx context.Context, remote string) (map[string][]string, map[string]string, error) {
	prefix := "refs/remotes/" + remote + "/"

	list, err := g.runGit(ctx, "for-each-ref", "--format=%(objectname) %(refname) %(symref)", prefix)
	if err != nil {
		return nil, nil, err
	}

	branches := make(map[string][]string)
	bookmarks := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(list))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		hash, ref := fields[0], strings.TrimPrefix(fields[1], prefix)
		if ref == "HEAD" {
			branches[DefaultBranch] = append(branches[DefaultBranch], hash)
			continue
		}
		bookmarks[ref] = hash
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	return branches, bookmarks, nil
}

var (
	_ Graph     = (*GitGraph)(nil)
	_ Workspace = (*GitGraph)(nil)
)
