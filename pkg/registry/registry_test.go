package registry_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/remotes/pkg/registry"
)

var _ = Describe("Registry", func() {
	var reg *registry.Registry

	identity := func(_ context.Context, subset []string) ([]string, error) {
		return subset, nil
	}

	BeforeEach(func() {
		reg = registry.New()
	})

	It("registers and evaluates predicates", func() {
		Expect(reg.RegisterPredicate("all", registry.NoArgs("all", identity))).To(Succeed())

		out, err := reg.Eval(context.Background(), "all", []string{"a", "b"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]string{"a", "b"}))
	})

	It("rejects duplicate names per namespace", func() {
		Expect(reg.RegisterPredicate("all", registry.NoArgs("all", identity))).To(Succeed())
		Expect(reg.RegisterPredicate("all", registry.NoArgs("all", identity))).To(MatchError(registry.ErrDuplicate))

		kw := func(context.Context, string) ([]string, error) { return nil, nil }
		Expect(reg.RegisterKeyword("all", kw)).To(Succeed())
		Expect(reg.RegisterKeyword("all", kw)).To(MatchError(registry.ErrDuplicate))
	})

	It("reports unknown predicates", func() {
		_, err := reg.Eval(context.Background(), "missing", nil, nil)
		Expect(err).To(MatchError(registry.ErrUnknown))
	})

	It("rejects arguments for zero-argument predicates", func() {
		Expect(reg.RegisterPredicate("pushed", registry.NoArgs("pushed", identity))).To(Succeed())

		_, err := reg.Eval(context.Background(), "pushed", nil, []string{"x"})
		Expect(err).To(MatchError("pushed takes no arguments"))
	})

	It("lists names sorted", func() {
		Expect(reg.RegisterPredicate("b", registry.NoArgs("b", identity))).To(Succeed())
		Expect(reg.RegisterPredicate("a", registry.NoArgs("a", identity))).To(Succeed())
		Expect(reg.Predicates()).To(Equal([]string{"a", "b"}))
	})

	It("looks up templates", func() {
		tf := func(context.Context, string, []string) (string, error) { return "x", nil }
		Expect(reg.RegisterTemplate("t", tf)).To(Succeed())

		fn, ok := reg.Template("t")
		Expect(ok).To(BeTrue())
		out, err := fn(context.Background(), "h", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("x"))

		_, ok = reg.Template("missing")
		Expect(ok).To(BeFalse())
	})
})
