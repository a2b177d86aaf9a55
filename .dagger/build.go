package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/remotes/internal/dagger"
)

// Build returns a directory with the remotes binary for linux.
//
// go-sqlite3 needs cgo, so only the container's own architecture is built.
func (r *Remotes) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	path := "linux/"

	build := r.goContainer().
		WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/remotes"})

	return dag.Directory().WithDirectory(path, build.Directory(path))
}

// BuildRelease compiles a versioned binary with embedded version info
func (r *Remotes) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/remotes/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/remotes/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/remotes/pkg/utils.Buildtime=%s'", time.Now().UTC().Format(time.RFC3339)),
	}

	return r.Build(ctx, strings.Join(ldflags, " "))
}
