package remotebranch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/remotes/pkg/remotebranch"
)

var _ = Describe("qualified names", func() {
	DescribeTable("Split",
		func(name, remote, ref string) {
			gotRemote, gotRef := remotebranch.Split(name)
			Expect(gotRemote).To(Equal(remote))
			Expect(gotRef).To(Equal(ref))
		},
		Entry("branch", "origin/default", "origin", "default"),
		Entry("alias", "origin", "origin", ""),
		Entry("ref with slashes", "origin/feature/x", "origin", "feature/x"),
		Entry("empty", "", "", ""),
	)

	DescribeTable("Join",
		func(remote, ref, name string) {
			Expect(remotebranch.Join(remote, ref)).To(Equal(name))
		},
		Entry("branch", "origin", "stable", "origin/stable"),
		Entry("empty ref is the alias", "origin", "", "origin"),
	)

	It("round-trips non-empty refs", func() {
		for _, ref := range []string{"default", "feature/x", "@"} {
			remote, got := remotebranch.Split(remotebranch.Join("upstream", ref))
			Expect(remote).To(Equal("upstream"))
			Expect(got).To(Equal(ref))
		}
	})
})
