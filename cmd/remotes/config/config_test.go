package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/remotes/cmd/remotes/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
		out     *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "remotes-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .remotes dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".remotes"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(run("set", "graph.backend", "sqlite")).To(Succeed())

			_, err := os.Stat(filepath.Join(tmpDir, ".remotes", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("graph.backend"))
		})

		It("adds a path", func() {
			Expect(run("set", "paths.origin", "https://example.com/repo")).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".remotes", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`name = "origin"`))
		})

		It("unsets a path with an empty value", func() {
			Expect(run("set", "paths.origin", "https://example.com/repo")).To(Succeed())
			Expect(run("set", "paths.origin", "")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Unset"))

			data, err := os.ReadFile(filepath.Join(tmpDir, ".remotes", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).NotTo(ContainSubstring("origin"))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "graph.backend")).NotTo(Succeed())
		})

		It("rejects zero arguments", func() {
			Expect(run("set")).NotTo(Succeed())
		})

		It("rejects invalid duration values", func() {
			Expect(run("set", "lock.timeout", "not-a-duration")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(run("set", "api.listen", ":9999")).To(Succeed())

			out.Reset()
			Expect(run("get", "api.listen")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(":9999"))
		})

		It("reports unset keys", func() {
			Expect(run("get", "paths.origin")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(run("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("runs without error when no config exists", func() {
			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("graph.backend"))
		})

		It("includes configured paths and schemes", func() {
			Expect(run("set", "paths.origin", "https://example.com/repo")).To(Succeed())
			Expect(run("set", "schemes.gh", "https://github.com/{1}")).To(Succeed())

			out.Reset()
			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`paths.origin`))
			Expect(out.String()).To(ContainSubstring(`"https://github.com/{1}"`))
		})

		It("rejects any arguments", func() {
			Expect(run("list", "extra")).NotTo(Succeed())
		})
	})
})
