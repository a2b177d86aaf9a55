package metrics_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/remotes/pkg/metrics"
)

var _ = Describe("Recorder", func() {
	var (
		reg *prometheus.Registry
		rec *metrics.Recorder
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		rec = metrics.New(reg)
	})

	It("counts saves by status and records written on success", func() {
		rec.Save("origin", "pull", nil, 3, 12)
		rec.Save("origin", "pull", errors.New("boom"), 5, 4)

		expected := `
# HELP remotes_records_written_total Total number of store records written, labelled by remote.
# TYPE remotes_records_written_total counter
remotes_records_written_total{remote="origin"} 3
`
		Expect(testutil.GatherAndCompare(reg, strings.NewReader(expected), "remotes_records_written_total")).To(Succeed())

		expected = `
# HELP remotes_saves_total Total number of remote state saves, labelled by remote, exchange and status.
# TYPE remotes_saves_total counter
remotes_saves_total{exchange="pull",remote="origin",status="error"} 1
remotes_saves_total{exchange="pull",remote="origin",status="ok"} 1
`
		Expect(testutil.GatherAndCompare(reg, strings.NewReader(expected), "remotes_saves_total")).To(Succeed())
	})

	It("tracks table builds and size", func() {
		rec.TableBuilt(4)
		rec.TableBuilt(2)

		expected := `
# HELP remotes_table_builds_total Total number of remote branch table computations.
# TYPE remotes_table_builds_total counter
remotes_table_builds_total 2
# HELP remotes_table_size Number of names in the last computed remote branch table.
# TYPE remotes_table_size gauge
remotes_table_size 2
`
		Expect(testutil.GatherAndCompare(reg, strings.NewReader(expected),
			"remotes_table_builds_total", "remotes_table_size")).To(Succeed())
	})

	It("counts skipped records by reason", func() {
		rec.Skipped("unknown")
		rec.Skipped("unknown")
		rec.Skipped("inactive")

		count, err := testutil.GatherAndCount(reg, "remotes_records_skipped_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))
	})

	It("ignores calls on a nil recorder", func() {
		var nilRec *metrics.Recorder
		Expect(func() {
			nilRec.Save("origin", "push", nil, 1, 1)
			nilRec.TableBuilt(1)
			nilRec.Skipped("unknown")
		}).NotTo(Panic())
	})
})
