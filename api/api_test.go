package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/metrics"
	"github.com/papercomputeco/remotes/pkg/registry"
	"github.com/papercomputeco/remotes/pkg/remotebranch"
	"github.com/papercomputeco/remotes/pkg/revgraph"
	"github.com/papercomputeco/remotes/pkg/store"
)

// fixture is a four revision line where origin tracks the middle two.
type fixture struct {
	dir        string
	graph      *revgraph.Memory
	file       *store.File
	repo       *remotebranch.Repo
	reg        *registry.Registry
	a, b, c, d *revgraph.Revision
}

func newFixture() *fixture {
	f := &fixture{graph: revgraph.NewMemory()}

	var err error
	f.dir, err = os.MkdirTemp("", "api-test-*")
	Expect(err).NotTo(HaveOccurred())

	f.a = revgraph.NewRevision("default", "a", nil)
	f.b = revgraph.NewRevision("default", "b", []*revgraph.Revision{f.a})
	f.c = revgraph.NewRevision("default", "c", []*revgraph.Revision{f.b})
	f.d = revgraph.NewRevision("default", "d", []*revgraph.Revision{f.c})
	for _, rev := range []*revgraph.Revision{f.a, f.b, f.c, f.d} {
		Expect(f.graph.Add(rev)).To(Succeed())
	}

	l := logger.Nop()
	f.file = store.NewFile(f.dir, l)
	Expect(f.file.Rewrite("origin", []store.Record{
		{Hash: f.c.Hash, Name: "origin/default"},
		{Hash: f.b.Hash, Name: "origin/feature"},
	})).To(Succeed())

	table := remotebranch.NewTable(f.file, f.graph, l, nil)
	f.repo = remotebranch.NewRepo(table, f.graph, remotebranch.Options{
		Paths:     []remotebranch.Path{{Name: "origin", URI: "https://example.com/repo"}},
		Workspace: f.graph,
		Logger:    l,
	})

	f.reg = registry.New()
	Expect(remotebranch.Register(f.reg, f.repo)).To(Succeed())
	return f
}

func get(server *Server, url string, out any) *http.Response {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	Expect(err).NotTo(HaveOccurred())

	resp, err := server.app.Test(req)
	Expect(err).NotTo(HaveOccurred())

	if out != nil {
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, out)).To(Succeed())
	}
	return resp
}

var _ = Describe("Server", func() {
	var (
		f      *fixture
		server *Server
	)

	BeforeEach(func() {
		f = newFixture()

		var err error
		server, err = NewServer(Config{ListenAddr: ":0", Registry: f.reg}, f.repo, f.graph, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(f.dir)
	})

	Describe("NewServer", func() {
		It("requires a repo, a graph and a registry", func() {
			_, err := NewServer(Config{Registry: f.reg}, nil, f.graph, nil)
			Expect(err).To(MatchError(ContainSubstring("repo is required")))

			_, err = NewServer(Config{Registry: f.reg}, f.repo, nil, nil)
			Expect(err).To(MatchError(ContainSubstring("graph is required")))

			_, err = NewServer(Config{}, f.repo, f.graph, nil)
			Expect(err).To(MatchError(ContainSubstring("registry is required")))
		})
	})

	It("answers ping", func() {
		var body string
		resp := get(server, "/ping", &body)
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(body).To(Equal("pong"))
	})

	Describe("GET /v1/remotebranches", func() {
		It("lists tracked names sorted by name", func() {
			var body BranchesResponse
			resp := get(server, "/v1/remotebranches", &body)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body.Count).To(Equal(2))
			Expect(body.Branches).To(Equal([]BranchEntry{
				{Name: "origin/default", Hash: f.c.Hash, Rev: f.c.Rev},
				{Name: "origin/feature", Hash: f.b.Hash, Rev: f.b.Rev},
			}))
		})

		It("serves an empty list when nothing is tracked", func() {
			Expect(f.file.Rewrite("origin", nil)).To(Succeed())
			f.repo.Table().Invalidate()

			var body BranchesResponse
			get(server, "/v1/remotebranches", &body)
			Expect(body.Count).To(BeZero())
			Expect(body.Branches).To(BeEmpty())
		})
	})

	Describe("GET /v1/remotebranches/preferred", func() {
		It("lists the preferred names", func() {
			var body BranchesResponse
			get(server, "/v1/remotebranches/preferred", &body)
			Expect(body.Count).To(Equal(2))
			Expect(body.Branches[0].Name).To(Equal("origin/default"))
		})
	})

	Describe("POST /v1/remotebranches/refresh", func() {
		It("makes new store contents visible", func() {
			var before BranchesResponse
			get(server, "/v1/remotebranches", &before)
			Expect(before.Count).To(Equal(2))

			Expect(f.file.Rewrite("upstream", []store.Record{{Hash: f.d.Hash, Name: "upstream/default"}})).To(Succeed())

			var cached BranchesResponse
			get(server, "/v1/remotebranches", &cached)
			Expect(cached.Count).To(Equal(2))

			req, err := http.NewRequest(http.MethodPost, "/v1/remotebranches/refresh", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNoContent))

			var after BranchesResponse
			get(server, "/v1/remotebranches", &after)
			Expect(after.Count).To(Equal(3))
		})
	})

	Describe("GET /v1/revisions/:hash", func() {
		It("renders every registered keyword", func() {
			var body RevisionResponse
			resp := get(server, "/v1/revisions/"+f.c.Hash, &body)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body.Hash).To(Equal(f.c.Hash))
			Expect(body.Branch).To(Equal("default"))
			Expect(body.Keywords).To(HaveKeyWithValue("remotebranches", []string{"origin/default"}))
			Expect(body.Keywords).To(HaveKeyWithValue("preferredremotebranches", []string{"origin/default"}))
			Expect(body.Keywords).To(HaveKeyWithValue("remotedistance", []string{"origin/default:0", "origin/feature:-1"}))
		})

		It("renders empty keyword lists for untracked revisions", func() {
			var body RevisionResponse
			get(server, "/v1/revisions/"+f.a.Hash, &body)
			Expect(body.Keywords["remotebranches"]).To(BeEmpty())
			Expect(body.Keywords["remotedistance"]).To(Equal([]string{"origin/default:2", "origin/feature:1"}))
		})

		It("returns 404 for unknown revisions", func() {
			var body ErrorResponse
			resp := get(server, "/v1/revisions/ffffffff", &body)
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(body.Error).To(ContainSubstring("revision not found"))
		})
	})

	Describe("GET /v1/revisions/:hash/distance", func() {
		It("returns the signed distance", func() {
			var body DistanceResponse
			resp := get(server, "/v1/revisions/"+f.a.Hash+"/distance?name=origin/default", &body)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body).To(Equal(DistanceResponse{Hash: f.a.Hash, Name: "origin/default", Distance: 2}))
		})

		It("is negative when the remote is behind", func() {
			var body DistanceResponse
			get(server, "/v1/revisions/"+f.d.Hash+"/distance?name=origin/feature", &body)
			Expect(body.Distance).To(Equal(-2))
		})

		It("requires a name", func() {
			resp := get(server, "/v1/revisions/"+f.a.Hash+"/distance", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("GET /v1/revsets/:name", func() {
		It("evaluates pushed over the whole graph", func() {
			var body RevsetResponse
			resp := get(server, "/v1/revsets/pushed", &body)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body.Revisions).To(Equal([]string{f.a.Hash, f.b.Hash, f.c.Hash}))
			Expect(body.Count).To(Equal(3))
		})

		It("evaluates remotebranches to the tracked tips", func() {
			var body RevsetResponse
			get(server, "/v1/revsets/remotebranches", &body)
			Expect(body.Revisions).To(Equal([]string{f.b.Hash, f.c.Hash}))
		})

		It("returns 404 for unknown predicates", func() {
			resp := get(server, "/v1/revsets/nosuch", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("/metrics", func() {
		It("is only mounted with a gatherer", func() {
			resp := get(server, "/metrics", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))

			reg := prometheus.NewRegistry()
			metrics.New(reg).TableBuilt(2)

			withMetrics, err := NewServer(Config{Registry: f.reg, Gatherer: reg}, f.repo, f.graph, nil)
			Expect(err).NotTo(HaveOccurred())

			resp = get(withMetrics, "/metrics", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("remotes_table_size 2"))
		})
	})
})
