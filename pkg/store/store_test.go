package store_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/remotes/pkg/store"
)

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	hashC = "cccccccccccccccccccccccccccccccccccccccc"
)

var _ = Describe("store.File", func() {
	var (
		tmpDir string
		f      *store.File
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "store-test-*")
		Expect(err).NotTo(HaveOccurred())
		f = store.NewFile(tmpDir, nil)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writeStore := func(content string) {
		err := os.WriteFile(filepath.Join(tmpDir, store.FileName), []byte(content), 0o644)
		Expect(err).NotTo(HaveOccurred())
	}

	readStore := func() string {
		data, err := os.ReadFile(filepath.Join(tmpDir, store.FileName))
		Expect(err).NotTo(HaveOccurred())
		return string(data)
	}

	Describe("Load", func() {
		It("returns no records when the file does not exist", func() {
			records, err := f.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("reads records in file order", func() {
			writeStore(hashA + " origin/default\n" + hashB + " origin/feature\n")

			records, err := f.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(Equal([]store.Record{
				{Hash: hashA, Name: "origin/default"},
				{Hash: hashB, Name: "origin/feature"},
			}))
		})

		It("keeps spaces inside the name", func() {
			writeStore(hashA + " origin/my branch\n")

			records, err := f.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(ConsistOf(store.Record{Hash: hashA, Name: "origin/my branch"}))
		})

		It("skips blank and malformed lines and logs a warning", func() {
			var buf bytes.Buffer
			f = store.NewFile(tmpDir, slog.New(slog.NewTextHandler(&buf, nil)))
			writeStore("\n" + hashA + " origin/default\nnospace\n\n")

			records, err := f.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(buf.String()).To(ContainSubstring("skipping malformed remote branch line"))
			Expect(buf.String()).To(ContainSubstring("line=3"))
		})
	})

	Describe("Rewrite", func() {
		It("creates the file when none exists", func() {
			err := f.Rewrite("origin", []store.Record{
				{Hash: hashA, Name: "origin/default"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(readStore()).To(Equal(hashA + " origin/default\n"))
		})

		It("replaces the records of one remote and keeps the others first", func() {
			writeStore(hashA + " origin/default\n" + hashB + " upstream/default\n" + hashC + " origin/stale\n")

			err := f.Rewrite("origin", []store.Record{
				{Hash: hashC, Name: "origin/default"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(readStore()).To(Equal(hashB + " upstream/default\n" + hashC + " origin/default\n"))
		})

		It("removes every record of the remote when given none", func() {
			writeStore(hashA + " origin/default\n" + hashB + " upstream/default\n")

			Expect(f.Rewrite("origin", nil)).To(Succeed())
			Expect(readStore()).To(Equal(hashB + " upstream/default\n"))
		})

		It("matches remotes by name prefix", func() {
			writeStore(hashA + " ab/default\n" + hashB + " b/default\n")

			Expect(f.Rewrite("a", nil)).To(Succeed())
			Expect(readStore()).To(Equal(hashB + " b/default\n"))
		})

		It("drops duplicate new records", func() {
			err := f.Rewrite("origin", []store.Record{
				{Hash: hashA, Name: "origin/default"},
				{Hash: hashA, Name: "origin/default"},
				{Hash: hashB, Name: "origin/default"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(readStore(), "\n")).To(Equal(2))
		})

		It("drops malformed lines on rewrite", func() {
			writeStore("garbage\n" + hashB + " upstream/default\n")

			Expect(f.Rewrite("origin", nil)).To(Succeed())
			Expect(readStore()).To(Equal(hashB + " upstream/default\n"))
		})

		It("leaves no temp files behind", func() {
			Expect(f.Rewrite("origin", []store.Record{{Hash: hashA, Name: "origin/default"}})).To(Succeed())

			entries, err := os.ReadDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(Equal(store.FileName))
		})

		It("round-trips through Load", func() {
			records := []store.Record{
				{Hash: hashA, Name: "origin/default"},
				{Hash: hashB, Name: "origin/stable"},
			}
			Expect(f.Rewrite("origin", records)).To(Succeed())

			loaded, err := f.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(records))
		})
	})
})

var _ = Describe("store.Record", func() {
	It("renders the on-disk form", func() {
		Expect(store.Record{Hash: hashA, Name: "origin/default"}.String()).
			To(Equal(hashA + " origin/default"))
	})
})
