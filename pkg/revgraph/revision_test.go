package revgraph_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/remotes/pkg/revgraph"
)

var _ = Describe("Revision", func() {
	Describe("NewRevision", func() {
		It("creates a root revision without parents", func() {
			rev := revgraph.NewRevision("default", "initial", nil)
			Expect(rev.Parents).To(BeEmpty())
			Expect(rev.Hash).To(HaveLen(64))
			Expect(rev.Branch).To(Equal("default"))
		})

		It("defaults the branch name", func() {
			rev := revgraph.NewRevision("", "initial", nil)
			Expect(rev.Branch).To(Equal(revgraph.DefaultBranch))
		})

		It("links to its parents", func() {
			a := revgraph.NewRevision("default", "a", nil)
			b := revgraph.NewRevision("default", "b", nil)
			merge := revgraph.NewRevision("default", "merge", []*revgraph.Revision{a, b})
			Expect(merge.Parents).To(Equal([]string{a.Hash, b.Hash}))
		})

		It("produces the same hash for the same content", func() {
			a := revgraph.NewRevision("default", "same", nil)
			b := revgraph.NewRevision("default", "same", nil)
			Expect(a.Hash).To(Equal(b.Hash))
		})

		It("produces a different hash for a different parent", func() {
			root1 := revgraph.NewRevision("default", "root1", nil)
			root2 := revgraph.NewRevision("default", "root2", nil)
			a := revgraph.NewRevision("default", "child", []*revgraph.Revision{root1})
			b := revgraph.NewRevision("default", "child", []*revgraph.Revision{root2})
			Expect(a.Hash).NotTo(Equal(b.Hash))
		})

		It("produces a different hash for a different branch", func() {
			a := revgraph.NewRevision("default", "same", nil)
			b := revgraph.NewRevision("stable", "same", nil)
			Expect(a.Hash).NotTo(Equal(b.Hash))
		})

		It("does not hash metadata", func() {
			a := revgraph.NewRevision("default", "same", nil)
			b := revgraph.NewRevision("default", "same", nil, revgraph.RevisionMeta{Closed: true})
			Expect(a.Hash).To(Equal(b.Hash))
			Expect(b.Closed).To(BeTrue())
		})
	})

	Describe("Inactive", func() {
		It("is false for a plain revision", func() {
			Expect(revgraph.NewRevision("default", "x", nil).Inactive()).To(BeFalse())
		})

		It("is true for closed or obsolete revisions", func() {
			closed := revgraph.NewRevision("default", "x", nil, revgraph.RevisionMeta{Closed: true})
			obsolete := revgraph.NewRevision("default", "y", nil, revgraph.RevisionMeta{Obsolete: true})
			Expect(closed.Inactive()).To(BeTrue())
			Expect(obsolete.Inactive()).To(BeTrue())
		})
	})

	Describe("ErrNotFound", func() {
		It("includes the hash", func() {
			Expect(revgraph.ErrNotFound{Hash: "abc"}.Error()).To(Equal("revision not found: abc"))
			Expect(revgraph.ErrNotFound{}.Error()).To(Equal("revision not found"))
		})
	})
})
