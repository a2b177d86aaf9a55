package revgraph_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

// graphUnderTest pairs a Graph with the implementation specific way of adding
// revisions to it.
type graphUnderTest struct {
	graph revgraph.Graph
	add   func(*revgraph.Revision) error
	close func()
}

// describeGraph declares the behavior every Graph implementation shares.
//
// The fixture is:
//
//	a - b - c - d
//	     \
//	      e - f (merge of e and c)
func describeGraph(newGraph func() graphUnderTest) {
	var (
		ctx              context.Context
		gut              graphUnderTest
		a, b, c, d, e, f *revgraph.Revision
	)

	BeforeEach(func() {
		ctx = context.Background()
		gut = newGraph()

		a = revgraph.NewRevision("default", "a", nil)
		b = revgraph.NewRevision("default", "b", []*revgraph.Revision{a})
		c = revgraph.NewRevision("default", "c", []*revgraph.Revision{b})
		d = revgraph.NewRevision("default", "d", []*revgraph.Revision{c})
		e = revgraph.NewRevision("stable", "e", []*revgraph.Revision{b})
		f = revgraph.NewRevision("stable", "f", []*revgraph.Revision{e, c})

		for _, rev := range []*revgraph.Revision{a, b, c, d, e, f} {
			Expect(gut.add(rev)).To(Succeed())
		}
	})

	AfterEach(func() {
		if gut.close != nil {
			gut.close()
		}
	})

	Describe("add", func() {
		It("assigns increasing graph order", func() {
			Expect(a.Rev).To(BeNumerically("<", b.Rev))
			Expect(b.Rev).To(BeNumerically("<", c.Rev))
			Expect(e.Rev).To(BeNumerically("<", f.Rev))
		})

		It("rejects revisions whose parents are unknown", func() {
			orphanParent := revgraph.NewRevision("default", "missing", nil)
			orphan := revgraph.NewRevision("default", "orphan", []*revgraph.Revision{orphanParent})
			err := gut.add(orphan)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, revgraph.ErrInvalidRevision)).To(BeTrue())
		})

		It("is a noop for an existing revision", func() {
			dup := revgraph.NewRevision("default", "b", []*revgraph.Revision{a})
			Expect(gut.add(dup)).To(Succeed())
			Expect(dup.Rev).To(Equal(b.Rev))
		})
	})

	Describe("Resolve", func() {
		It("finds a revision by full hash", func() {
			rev, found, err := gut.graph.Resolve(ctx, c.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(rev.Hash).To(Equal(c.Hash))
			Expect(rev.Parents).To(Equal([]string{b.Hash}))
			Expect(rev.Rev).To(Equal(c.Rev))
		})

		It("finds a revision by unique prefix", func() {
			rev, found, err := gut.graph.Resolve(ctx, f.Hash[:16])
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(rev.Hash).To(Equal(f.Hash))
			Expect(rev.Branch).To(Equal("stable"))
			Expect(rev.Parents).To(Equal([]string{e.Hash, c.Hash}))
		})

		It("reports a miss for unknown hashes", func() {
			_, found, err := gut.graph.Resolve(ctx, "0000000000000000000000000000000000000000")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("reports a miss for non-hex input", func() {
			_, found, err := gut.graph.Resolve(ctx, "not a hash")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})
	})

	Describe("Ancestors", func() {
		It("includes the heads themselves", func() {
			anc, err := gut.graph.Ancestors(ctx, []string{a.Hash})
			Expect(err).NotTo(HaveOccurred())
			Expect(anc).To(HaveLen(1))
			Expect(anc).To(HaveKey(a.Hash))
		})

		It("follows every parent of a merge", func() {
			anc, err := gut.graph.Ancestors(ctx, []string{f.Hash})
			Expect(err).NotTo(HaveOccurred())
			Expect(anc).To(HaveLen(5))
			Expect(anc).NotTo(HaveKey(d.Hash))
		})

		It("unions several heads", func() {
			anc, err := gut.graph.Ancestors(ctx, []string{d.Hash, e.Hash})
			Expect(err).NotTo(HaveOccurred())
			Expect(anc).To(HaveLen(5))
			Expect(anc).NotTo(HaveKey(f.Hash))
		})

		It("returns an empty set for no heads", func() {
			anc, err := gut.graph.Ancestors(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(anc).To(BeEmpty())
		})
	})

	Describe("AncestorsDifference", func() {
		It("counts revisions between two points of a line", func() {
			n, err := gut.graph.AncestorsDifference(ctx, a.Hash, d.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))
		})

		It("is zero for the same revision", func() {
			n, err := gut.graph.AncestorsDifference(ctx, c.Hash, c.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})

		It("is zero when high is an ancestor of low", func() {
			n, err := gut.graph.AncestorsDifference(ctx, d.Hash, a.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})

		It("counts only revisions not reachable from low across branches", func() {
			n, err := gut.graph.AncestorsDifference(ctx, d.Hash, f.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})

		It("errors for unknown revisions", func() {
			_, err := gut.graph.AncestorsDifference(ctx, "ffff", d.Hash)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("All", func() {
		It("returns revisions in graph order", func() {
			revs, err := gut.graph.All(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(revs).To(HaveLen(6))
			Expect(revs[0].Hash).To(Equal(a.Hash))
			Expect(revs[5].Hash).To(Equal(f.Hash))
			Expect(revs[5].Parents).To(Equal([]string{e.Hash, c.Hash}))
		})
	})
}

var _ = Describe("Memory", func() {
	describeGraph(func() graphUnderTest {
		g := revgraph.NewMemory()
		return graphUnderTest{graph: g, add: g.Add}
	})

	It("reports the active bookmark", func() {
		g := revgraph.NewMemory()
		name, err := g.ActiveBookmark(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(BeEmpty())

		g.SetActiveBookmark("feature")
		name, err = g.ActiveBookmark(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("feature"))
	})
})

var _ = Describe("SQLiteGraph", func() {
	describeGraph(func() graphUnderTest {
		g, err := revgraph.NewSQLiteGraph(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return graphUnderTest{
			graph: g,
			add: func(rev *revgraph.Revision) error {
				_, err := g.Put(context.Background(), rev)
				return err
			},
			close: func() { g.Close() },
		}
	})

	Describe("Put", func() {
		var g *revgraph.SQLiteGraph

		BeforeEach(func() {
			var err error
			g, err = revgraph.NewSQLiteGraph(":memory:")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			g.Close()
		})

		It("reports whether the revision was new", func() {
			ctx := context.Background()
			rev := revgraph.NewRevision("default", "a", nil)

			inserted, err := g.Put(ctx, rev)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			inserted, err = g.Put(ctx, revgraph.NewRevision("default", "a", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())
		})

		It("persists closed and obsolete flags", func() {
			ctx := context.Background()
			rev := revgraph.NewRevision("default", "a", nil, revgraph.RevisionMeta{Closed: true})
			_, err := g.Put(ctx, rev)
			Expect(err).NotTo(HaveOccurred())

			got, found, err := g.Resolve(ctx, rev.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(got.Closed).To(BeTrue())
			Expect(got.Obsolete).To(BeFalse())
		})

		It("marks revisions obsolete", func() {
			ctx := context.Background()
			rev := revgraph.NewRevision("default", "a", nil)
			_, err := g.Put(ctx, rev)
			Expect(err).NotTo(HaveOccurred())

			Expect(g.MarkObsolete(ctx, rev.Hash)).To(Succeed())

			got, _, err := g.Resolve(ctx, rev.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Obsolete).To(BeTrue())
		})

		It("errors marking an unknown revision obsolete", func() {
			err := g.MarkObsolete(context.Background(), "abcd")
			var notFound revgraph.ErrNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})
})
