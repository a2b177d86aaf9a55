package remotebranch

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/papercomputeco/remotes/pkg/registry"
	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// Names the engine registers.
const (
	PredicateUpstream       = "upstream"
	PredicatePushed         = "pushed"
	PredicateRemoteBranches = "remotebranches"

	KeywordRemoteBranches  = "remotebranches"
	KeywordPreferred       = "preferredremotebranches"
	KeywordRemoteDistance  = "remotedistance"
	TemplateRemoteDistance = "remotedistance"
)

// Register adds the query predicates, display keywords and template function
// of repo to reg. It is meant to be called once when the host starts.
func Register(reg *registry.Registry, repo *Repo) error {
	return errors.Join(
		reg.RegisterPredicate(PredicateUpstream, registry.NoArgs(PredicateUpstream, repo.Upstream)),
		reg.RegisterPredicate(PredicatePushed, registry.NoArgs(PredicatePushed, repo.Pushed)),
		reg.RegisterPredicate(PredicateRemoteBranches, registry.NoArgs(PredicateRemoteBranches, repo.RemoteHeads)),

		reg.RegisterKeyword(KeywordRemoteBranches, repo.keyword(func(ctx context.Context, rev *revgraph.Revision) ([]string, error) {
			return repo.RemoteBranchesFor(ctx, rev), nil
		})),
		reg.RegisterKeyword(KeywordPreferred, repo.keyword(func(ctx context.Context, rev *revgraph.Revision) ([]string, error) {
			return repo.PreferredFor(ctx, rev), nil
		})),
		reg.RegisterKeyword(KeywordRemoteDistance, repo.keyword(repo.RemoteDistances)),

		reg.RegisterTemplate(TemplateRemoteDistance, repo.distanceTemplate),
	)
}

func (r *Repo) keyword(fn func(context.Context, *revgraph.Revision) ([]string, error)) registry.KeywordFunc {
	return func(ctx context.Context, hash string) ([]string, error) {
		rev, err := revgraph.MustResolve(ctx, r.graph, hash)
		if err != nil {
			return nil, err
		}
		return fn(ctx, rev)
	}
}

func (r *Repo) distanceTemplate(ctx context.Context, hash string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s takes exactly one argument", TemplateRemoteDistance)
	}

	rev, err := revgraph.MustResolve(ctx, r.graph, hash)
	if err != nil {
		return "", err
	}

	d, err := r.Distance(ctx, rev, args[0])
	if err != nil {
		return "", err
	}
	return strconv.Itoa(d), nil
}
