package fileindex

import (
	"fmt"
	"os"
	"sort"
)

// Refresh reconciles the index with the filesystem in four phases: prune
// roots that no longer exist, prune entries whose files no longer exist,
// discover new files under the surviving roots, and, when deepScan is set,
// recompute the hash of every remaining entry. The updated state is persisted
// unconditionally at the end of the call, even when nothing changed.
//
// Deep scan is O(total indexed file size); use it sparingly, to detect
// content changes in files the index already tracks.
func (idx *Index) Refresh(deepScan bool) error {
	VerboseLog(1, "refresh: pruning roots that no longer exist")
	idx.pruneRoots()

	VerboseLog(1, "refresh: pruning entries whose files no longer exist")
	idx.pruneEntries()

	VerboseLog(1, "refresh: discovering new files under %d roots", len(idx.roots))
	for _, root := range idx.roots {
		newFiles, err := idx.collectNewFiles(root)
		if err != nil {
			return err
		}
		if err := idx.hashAndRecord(newFiles); err != nil {
			return err
		}
	}

	if deepScan {
		VerboseLog(1, "refresh: recomputing hashes for %d entries", len(idx.entries))
		if err := idx.rehashAll(); err != nil {
			return err
		}
	}

	if err := idx.Save(); err != nil {
		return fmt.Errorf("failed to persist refreshed index: %w", err)
	}
	return nil
}

// pruneRoots drops tracked roots that no longer exist on disk, preserving the
// order of the survivors.
func (idx *Index) pruneRoots() {
	surviving := idx.roots[:0]
	for _, root := range idx.roots {
		if _, err := os.Stat(root); err == nil {
			surviving = append(surviving, root)
		} else if IsDebugEnabled("refresh") {
			VerboseLog(3, "pruning root %s: %v", root, err)
		}
	}
	idx.roots = surviving
}

// pruneEntries drops entries whose files no longer exist on disk. This
// applies to every entry, whether or not it originated from a tracked root.
// Absence here is an expected condition, not an error.
func (idx *Index) pruneEntries() {
	for path := range idx.entries {
		if _, err := os.Stat(path); err != nil {
			if IsDebugEnabled("refresh") {
				VerboseLog(3, "pruning entry %s: %v", path, err)
			}
			delete(idx.entries, path)
		}
	}
}

// rehashAll recomputes and overwrites the hash of every indexed entry. The
// existence check in pruneEntries has already run, but a file deleted between
// that check and the read here still fails; that narrow race propagates
// rather than being swallowed.
func (idx *Index) rehashAll() error {
	paths := make([]string, 0, len(idx.entries))
	for path := range idx.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return idx.hashAndRecord(paths)
}
