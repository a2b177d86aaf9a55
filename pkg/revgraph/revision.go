// Package revgraph is the revision graph the remote branch engine queries.
//
// The graph is owned by the host version-control tool. This package defines the
// contract the engine depends on and ships three implementations: an in-memory
// graph, a SQLite-backed graph, and an adapter over a local git repository.
package revgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// DefaultBranch is the name of the branch revisions belong to when none is given.
const DefaultBranch = "default"

// Revision is a single content-addressed revision in the graph.
type Revision struct {
	// Hash is the content-addressed identifier (SHA-256 or SHA-1, hex-encoded)
	Hash string `json:"hash"`

	// Parents are the hashes of the revision's parents, empty for roots.
	Parents []string `json:"parents,omitempty"`

	// Branch is the named branch the revision was committed on.
	Branch string `json:"branch"`

	// Rev is the revision's position in the local graph. A parent always has a
	// lower Rev than its children, so Rev is usable as a topological order key.
	Rev int `json:"rev"`

	// Closed marks a revision that closes its branch head.
	Closed bool `json:"closed,omitempty"`

	// Obsolete marks a revision that has been superseded locally.
	Obsolete bool `json:"obsolete,omitempty"`
}

// RevisionMeta carries the optional flags of a revision. They are stored
// alongside the revision but do not affect its hash.
type RevisionMeta struct {
	Closed   bool
	Obsolete bool
}

// NewRevision creates a revision on the given branch whose hash is computed
// from its content and parents. Rev is assigned when the revision is added to a
// graph.
func NewRevision(branch, content string, parents []*Revision, metas ...RevisionMeta) *Revision {
	if branch == "" {
		branch = DefaultBranch
	}

	r := &Revision{
		Branch: branch,
	}

	for _, p := range parents {
		if p != nil {
			r.Parents = append(r.Parents, p.Hash)
		}
	}

	if len(metas) > 0 {
		r.Closed = metas[0].Closed
		r.Obsolete = metas[0].Obsolete
	}

	r.Hash = computeHash(r.Branch, content, r.Parents)
	return r
}

// Inactive reports whether the revision is excluded from remote tracking.
func (r *Revision) Inactive() bool {
	return r.Closed || r.Obsolete
}

// computeHash calculates the content-addressed hash for a revision.
func computeHash(branch, content string, parents []string) string {
	if parents == nil {
		parents = []string{}
	}

	// Struct fields marshal in declaration order, which keeps the hash input
	// stable from one run to the next.
	data, err := json.Marshal(struct {
		Parents []string `json:"parents"`
		Branch  string   `json:"branch"`
		Content string   `json:"content"`
	}{
		Parents: parents,
		Branch:  branch,
		Content: content,
	})
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
