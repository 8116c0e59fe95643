package fileindex

import (
	"fmt"
	"sort"
)

// Index owns the path/hash mapping and the set of tracked root directories.
// All state is in-memory; durability goes through the Store at the save
// points (Refresh, Merge, explicit Save). An Index is not safe for use from
// multiple goroutines.
type Index struct {
	entries map[string]string // absolute file path -> hex SHA-256
	roots   []string          // tracked root directories, insertion order
	store   Store
	config  *Config

	hashWorkers int // concurrent hash workers for Scan/Refresh
}

// Open creates an Index from previously persisted state. Absent store files
// yield an empty index; corrupt store files are an error. A nil config uses
// built-in defaults.
func Open(store Store, config *Config) (*Index, error) {
	if store == nil {
		return nil, fmt.Errorf("nil store")
	}

	entries, roots, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load index state: %w", err)
	}

	idx := &Index{
		entries: entries,
		roots:   roots,
		store:   store,
		config:  config,
	}

	if config != nil {
		performanceConfig := config.GetPerformanceConfig()
		idx.hashWorkers = performanceConfig.HashWorkers
	} else {
		idx.hashWorkers = DefaultHashWorkers
	}

	return idx, nil
}

// RecordHash computes the content hash of the file at path and upserts it
// into the index. Only the entries mapping is touched; roots are unaffected.
func (idx *Index) RecordHash(path string) error {
	hash, err := HashFileToHexString(path, idx.hashBufferSize())
	if err != nil {
		return err
	}
	idx.entries[path] = hash
	return nil
}

// LookupHash returns the stored hash for path, if present.
func (idx *Index) LookupHash(path string) (string, bool) {
	hash, ok := idx.entries[path]
	return hash, ok
}

// HashEquals reports whether the stored hash for path equals candidateHash.
// A path absent from the index compares unequal rather than erroring.
func (idx *Index) HashEquals(path, candidateHash string) bool {
	hash, ok := idx.entries[path]
	return ok && hash == candidateHash
}

// FindByHash returns every indexed path whose stored hash equals hash, in
// lexical path order. An empty slice means no matches.
func (idx *Index) FindByHash(hash string) []string {
	matches := []string{}
	for path, stored := range idx.entries {
		if stored == hash {
			matches = append(matches, path)
		}
	}
	sort.Strings(matches)
	return matches
}

// Merge absorbs another index's state into this one. Roots not already
// tracked are appended after the existing ones; entries are upserted with the
// other index's hash winning on conflict, so the merged index tracks the most
// recently observed hash for each path. The merged state is persisted before
// returning.
func (idx *Index) Merge(other *Index) error {
	for _, root := range other.roots {
		if !containsString(idx.roots, root) {
			idx.roots = append(idx.roots, root)
		}
	}

	for path, hash := range other.entries {
		idx.entries[path] = hash
	}

	if err := idx.Save(); err != nil {
		return fmt.Errorf("failed to persist merged index: %w", err)
	}
	return nil
}

// Save persists the current entries and roots through the store.
func (idx *Index) Save() error {
	return idx.store.Save(idx.entries, idx.roots)
}

// Close releases the store. It does not save; callers who mutated the index
// outside a save point must call Save first.
func (idx *Index) Close() error {
	return idx.store.Close()
}

// Roots returns a copy of the tracked root directories in insertion order.
func (idx *Index) Roots() []string {
	roots := make([]string, len(idx.roots))
	copy(roots, idx.roots)
	return roots
}

// Len returns the number of indexed files.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Paths returns every indexed path in lexical order.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.entries))
	for path := range idx.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// containsString reports whether list contains s
func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
