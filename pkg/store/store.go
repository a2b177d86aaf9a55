// Package store persists remote branch records in the repository state
// directory.
//
// The store is a plain text log with one record per line:
//
//	<hex hash> <qualified name>
//
// Lines are kept in insertion order. A rewrite replaces every record of one
// remote and keeps the records of all other remotes untouched.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/remotes/pkg/logger"
)

// FileName is the name of the store file inside the state directory.
const FileName = "remotebranches"

// Record is one persisted line: a revision hash and the remote-qualified name
// that pointed at it when the remote was last seen.
type Record struct {
	Hash string `json:"hash" yaml:"hash"`
	Name string `json:"name" yaml:"name"`
}

// String renders the record in its on-disk form, without the trailing newline.
func (r Record) String() string {
	return r.Hash + " " + r.Name
}

// Loader reads the persisted records.
type Loader interface {
	Load() ([]Record, error)
}

// Rewriter replaces the persisted records of one remote.
type Rewriter interface {
	Rewrite(remote string, records []Record) error
}

// File is the file-backed store.
type File struct {
	path   string
	logger *slog.Logger
}

// NewFile creates a store backed by dir/remotebranches. The file is not
// touched until the first Load or Rewrite.
func NewFile(dir string, l *slog.Logger) *File {
	return &File{
		path:   filepath.Join(dir, FileName),
		logger: logger.OrNop(l),
	}
}

// Path returns the absolute location of the store file.
func (f *File) Path() string {
	return f.path
}

// Load reads every record from the store. A missing file is an empty store.
func (f *File) Load() ([]Record, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening remote branches: %w", err)
	}
	defer file.Close()

	return Parse(file, f.logger)
}

// Rewrite replaces the records of remote with records. Existing records whose
// name does not start with remote are kept in their original order, then the
// new records are appended. The file is replaced atomically.
func (f *File) Rewrite(remote string, records []Record) error {
	existing, err := f.Load()
	if err != nil {
		return err
	}

	kept := make([]Record, 0, len(existing)+len(records))
	for _, r := range existing {
		if !strings.HasPrefix(r.Name, remote) {
			kept = append(kept, r)
		}
	}

	seen := make(map[Record]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		kept = append(kept, r)
	}

	if err := f.write(kept); err != nil {
		return err
	}

	f.logger.Debug("rewrote remote branches",
		"remote", remote,
		"records", len(records),
		"total", len(kept),
	)

	return nil
}

// write replaces the store file through a temp file in the same directory so
// that readers see either the old or the new content.
func (f *File) write(records []Record) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+FileName+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	w := bufio.NewWriter(tmp)
	for _, r := range records {
		if _, err := w.WriteString(r.String() + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("writing remote branches: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing remote branches: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing remote branches: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing remote branches: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // shared with the host tool
		return fmt.Errorf("setting remote branches mode: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replacing remote branches: %w", err)
	}

	return nil
}

// Parse reads records from r. Blank lines are skipped. Lines without a
// "<hash> <name>" shape are logged and skipped.
func Parse(r io.Reader, l *slog.Logger) ([]Record, error) {
	l = logger.OrNop(l)

	var records []Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		hash, name, ok := strings.Cut(line, " ")
		if !ok || hash == "" || name == "" {
			l.Warn("skipping malformed remote branch line",
				"line", lineNo,
				"content", line,
			)
			continue
		}

		records = append(records, Record{Hash: hash, Name: name})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading remote branches: %w", err)
	}

	return records, nil
}

var (
	_ Loader   = (*File)(nil)
	_ Rewriter = (*File)(nil)
)
