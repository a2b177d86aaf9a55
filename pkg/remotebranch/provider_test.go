package remotebranch_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/remotes/pkg/remotebranch"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/store"
)

var _ = Describe("host integration", func() {
	var (
		ctx  context.Context
		g    *revgraph.Memory
		revs []*revgraph.Revision
		repo *remotebranch.Repo
	)

	BeforeEach(func() {
		ctx = context.Background()
		g = revgraph.NewMemory()
		revs = linear(g, "default", "a", "b")
		repo = newRepo(g, []store.Record{rec(revs[1], "origin/default")}, remotebranch.Options{})
	})

	Describe("NewLookup", func() {
		It("resolves tracked names before the host lookup", func() {
			lookup := remotebranch.NewLookup(repo, remotebranch.GraphLookup(g))

			hash, err := lookup(ctx, "origin/default")
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).To(Equal(revs[1].Hash))
		})

		It("passes other keys through", func() {
			lookup := remotebranch.NewLookup(repo, remotebranch.GraphLookup(g))

			hash, err := lookup(ctx, revs[0].Hash[:12])
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).To(Equal(revs[0].Hash))
		})

		It("reports misses from the host lookup", func() {
			lookup := remotebranch.NewLookup(repo, remotebranch.GraphLookup(g))

			_, err := lookup(ctx, "origin/missing")
			Expect(err).To(MatchError(revgraph.ErrNotFound{Hash: "origin/missing"}))
		})
	})

	Describe("MergeTags", func() {
		It("adds remote branches as remote tags", func() {
			tags := map[string]remotebranch.Tag{
				"tip": {Hash: revs[1].Hash, Type: "local"},
			}

			merged := repo.MergeTags(ctx, tags)
			Expect(merged).To(HaveLen(2))
			Expect(merged["origin/default"]).To(Equal(remotebranch.Tag{Hash: revs[1].Hash, Type: remotebranch.TagTypeRemote}))
			Expect(merged["tip"].Type).To(Equal("local"))
		})

		It("accepts a nil tag map", func() {
			Expect(repo.MergeTags(ctx, nil)).To(HaveKey("origin/default"))
		})
	})
})
