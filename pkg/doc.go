// Package fileindex maintains a persistent index mapping absolute file paths
// to SHA-256 content hashes and uses it to detect duplicate files across
// directory trees.
//
// # Core API
//
// The main entry point is Index, which owns the path/hash mapping and the set
// of tracked root directories:
//
//	store, _ := fileindex.NewFileStore("index.json", "roots.json")
//	idx, _ := fileindex.Open(store, nil)
//	defer idx.Close()
//
// # Basic Operations
//
// Index a directory tree (incremental, never overwrites existing hashes):
//
//	err := idx.Scan("/path/to/dir")
//
// Reconcile the index with the filesystem and persist it:
//
//	err := idx.Refresh(false)
//
// Find files duplicated between two indexes:
//
//	pairs := idxA.FindDuplicates(idxB)
//	for _, p := range pairs {
//		fmt.Printf("Duplicate found: %s and %s\n", p.Path, p.Match)
//	}
//
// # Persistence
//
// An Index never saves implicitly on teardown. Scan leaves the index dirty in
// memory; Refresh and Merge persist unconditionally at the end of the call.
// Callers that only Scan must call Save themselves before discarding the
// Index. Use NewEphemeralStore when no durable state is wanted, for example
// for one-shot duplicate comparisons.
//
// # Configuration
//
// Enable debug output:
//
//	fileindex.SetDebugFlags("scan,refresh")
//	fileindex.SetVerboseLevel(2)
package fileindex
