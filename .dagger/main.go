// Remotes CI
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/remotes/internal/dagger"
)

// Remotes is the main module for the remotes CI pipeline
type Remotes struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Remotes CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".remotes", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Remotes {
	return &Remotes{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc, git,
// libsqlite3-dev, CGO enabled, and the project source mounted.
//
// The git binary is needed by the git revision graph tests.
func (r *Remotes) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "git", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", r.Source)
}

// Test runs the unit and command suites via "go test"
func (r *Remotes) Test(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}
