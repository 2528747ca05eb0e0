// Package ledger persists the set of source video IDs that have already been
// used in a compilation, so later runs can skip them. The set only grows.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// Ledger loads and union-updates the seen-videos set
type Ledger interface {
	// Load returns every recorded ID. Unreadable storage yields an empty set.
	Load(ctx context.Context) (Set, error)
	// Record adds ids to the persisted set
	Record(ctx context.Context, ids []string) error
	Close() error
}

// Set is a set of video IDs
type Set map[string]struct{}

// NewSet builds a set from ids
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is in the set
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id, ignoring empty strings
func (s Set) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Union adds every member of other
func (s Set) Union(other Set) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the members in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FileLedger stores the set as a JSON array on disk
type FileLedger struct {
	path string
}

// NewFileLedger creates a ledger backed by the JSON file at path
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

// Load reads the JSON array. A missing or corrupt file is an empty set.
func (f *FileLedger) Load(_ context.Context) (Set, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️  Could not read ledger %s: %v", f.path, err)
		}
		return Set{}, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		log.Printf("⚠️  Ledger %s is corrupt, starting empty: %v", f.path, err)
		return Set{}, nil
	}
	return NewSet(ids...), nil
}

// Record unions ids into the file and rewrites it atomically
func (f *FileLedger) Record(ctx context.Context, ids []string) error {
	seen, err := f.Load(ctx)
	if err != nil {
		return err
	}
	seen.Union(NewSet(ids...))

	data, err := json.MarshalIndent(seen.Sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// Close is a no-op for the file ledger
func (f *FileLedger) Close() error { return nil }

// Options selects and configures a ledger backend
type Options struct {
	Backend   string // file, redis or sqlite
	Path      string
	RedisAddr string
	RedisPass string
	Key       string
}

// Open constructs the ledger named by opts.Backend
func Open(opts Options) (Ledger, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileLedger(opts.Path), nil
	case "redis":
		return NewRedisLedger(RedisConfig{Addr: opts.RedisAddr, Password: opts.RedisPass, Key: opts.Key})
	case "sqlite":
		path := opts.Path
		if filepath.Ext(path) == ".json" {
			path = path[:len(path)-len(".json")] + ".db"
		}
		return NewSQLiteLedger(path)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", opts.Backend)
	}
}
