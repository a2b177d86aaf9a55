package revgraph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteGraph implements Graph using SQLite as the storage backend.
type SQLiteGraph struct {
	db *sql.DB
}

// NewSQLiteGraph creates a new SQLite-backed graph.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteGraph(dbPath string) (*SQLiteGraph, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database lives and dies with its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	g := &SQLiteGraph{db: db}

	if err := g.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return g, nil
}

// migrate creates the necessary tables if they don't exist.
func (g *SQLiteGraph) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS revisions (
		rev INTEGER PRIMARY KEY,
		hash TEXT NOT NULL UNIQUE,
		branch TEXT NOT NULL,
		closed INTEGER NOT NULL DEFAULT 0,
		obsolete INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS parents (
		child TEXT NOT NULL,
		parent TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (child, position)
	);

	CREATE INDEX IF NOT EXISTS idx_parents_child ON parents(child);
	`

	_, err := g.db.Exec(schema)
	return err
}

// Put stores a revision and assigns its Rev. Returns true if the revision was
// newly inserted, false if it already exists. Every parent must already be
// stored.
func (g *SQLiteGraph) Put(ctx context.Context, rev *Revision) (bool, error) {
	if rev == nil || rev.Hash == "" {
		return false, fmt.Errorf("%w: missing hash", ErrInvalidRevision)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	err = tx.QueryRowContext(ctx, `SELECT rev FROM revisions WHERE hash = ?`, rev.Hash).Scan(&existing)
	if err == nil {
		rev.Rev = existing
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	for _, p := range rev.Parents {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM revisions WHERE hash = ?`, p).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: parent %s of %s not in graph", ErrInvalidRevision, p, rev.Hash)
		}
		if err != nil {
			return false, fmt.Errorf("failed to check parent: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO revisions (hash, branch, closed, obsolete) VALUES (?, ?, ?, ?)`,
		rev.Hash, rev.Branch, rev.Closed, rev.Obsolete,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert revision: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to read revision number: %w", err)
	}

	for i, p := range rev.Parents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parents (child, parent, position) VALUES (?, ?, ?)`,
			rev.Hash, p, i,
		); err != nil {
			return false, fmt.Errorf("failed to insert parent: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit revision: %w", err)
	}

	rev.Rev = int(id)
	return true, nil
}

// MarkObsolete flags a stored revision as obsolete.
func (g *SQLiteGraph) MarkObsolete(ctx context.Context, hash string) error {
	res, err := g.db.ExecContext(ctx, `UPDATE revisions SET obsolete = 1 WHERE hash = ?`, hash)
	if err != nil {
		return fmt.Errorf("failed to mark obsolete: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark obsolete: %w", err)
	}
	if n == 0 {
		return ErrNotFound{Hash: hash}
	}

	return nil
}

// Resolve implements Graph.
func (g *SQLiteGraph) Resolve(ctx context.Context, hash string) (*Revision, bool, error) {
	if !isHex(hash) {
		return nil, false, nil
	}

	query := `SELECT rev, hash, branch, closed, obsolete FROM revisions WHERE hash LIKE ? LIMIT 2`

	rows, err := g.db.QueryContext(ctx, query, strings.ToLower(hash)+"%")
	if err != nil {
		return nil, false, fmt.Errorf("failed to query revision: %w", err)
	}

	revs, err := g.scanRevisions(rows)
	if err != nil {
		return nil, false, err
	}

	if len(revs) != 1 {
		// missing or ambiguous prefix
		return nil, false, nil
	}

	rev := revs[0]
	parents, err := g.parentsOf(ctx, rev.Hash)
	if err != nil {
		return nil, false, err
	}
	rev.Parents = parents

	return rev, true, nil
}

// Ancestors implements Graph.
func (g *SQLiteGraph) Ancestors(ctx context.Context, heads []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(heads) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(heads)), ",")
	query := `
		WITH RECURSIVE anc(hash) AS (
			SELECT hash FROM revisions WHERE hash IN (` + placeholders + `)
			UNION
			SELECT p.parent FROM parents p JOIN anc ON p.child = anc.hash
		)
		SELECT hash FROM anc
	`

	args := make([]any, len(heads))
	for i, h := range heads {
		args[i] = h
	}

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ancestors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan ancestor: %w", err)
		}
		out[hash] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return out, nil
}

// AncestorsDifference implements Graph.
func (g *SQLiteGraph) AncestorsDifference(ctx context.Context, low, high string) (int, error) {
	for _, h := range []string{low, high} {
		ok, err := g.has(ctx, h)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrNotFound{Hash: h}
		}
	}

	query := `
		WITH RECURSIVE
			hi(hash) AS (
				SELECT ?
				UNION
				SELECT p.parent FROM parents p JOIN hi ON p.child = hi.hash
			),
			lo(hash) AS (
				SELECT ?
				UNION
				SELECT p.parent FROM parents p JOIN lo ON p.child = lo.hash
			)
		SELECT COUNT(*) FROM (SELECT hash FROM hi EXCEPT SELECT hash FROM lo)
	`

	var count int
	if err := g.db.QueryRowContext(ctx, query, high, low).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ancestors: %w", err)
	}

	return count, nil
}

// All implements Graph.
func (g *SQLiteGraph) All(ctx context.Context) ([]*Revision, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT rev, hash, branch, closed, obsolete FROM revisions ORDER BY rev`)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}

	revs, err := g.scanRevisions(rows)
	if err != nil {
		return nil, err
	}

	prows, err := g.db.QueryContext(ctx, `SELECT child, parent FROM parents ORDER BY child, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	defer prows.Close()

	parents := make(map[string][]string)
	for prows.Next() {
		var child, parent string
		if err := prows.Scan(&child, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		parents[child] = append(parents[child], parent)
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, rev := range revs {
		rev.Parents = parents[rev.Hash]
	}

	return revs, nil
}

// Close closes the database connection.
func (g *SQLiteGraph) Close() error {
	return g.db.Close()
}

func (g *SQLiteGraph) has(ctx context.Context, hash string) (bool, error) {
	var one int
	err := g.db.QueryRowContext(ctx, `SELECT 1 FROM revisions WHERE hash = ? LIMIT 1`, hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}

func (g *SQLiteGraph) parentsOf(ctx context.Context, hash string) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT parent FROM parents WHERE child = ? ORDER BY position`, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	var parents []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		parents = append(parents, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return parents, nil
}

// scanRevisions scans multiple rows into Revision structs and closes rows.
func (g *SQLiteGraph) scanRevisions(rows *sql.Rows) ([]*Revision, error) {
	defer rows.Close()

	var revs []*Revision
	for rows.Next() {
		var rev Revision
		if err := rows.Scan(&rev.Rev, &rev.Hash, &rev.Branch, &rev.Closed, &rev.Obsolete); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, &rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return revs, nil
}

// Ensure SQLiteGraph implements Graph
var _ Graph = (*SQLiteGraph)(nil)
