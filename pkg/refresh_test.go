package fileindex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRefresh_PrunesDeletedEntries(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	tempDir := t.TempDir()

	keep := writeFile(t, tempDir, "keep.txt", "keep")
	doomed := writeFile(t, tempDir, "doomed.txt", "doomed")

	if err := idx.Scan(tempDir); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if err := os.Remove(doomed); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}

	if err := idx.Refresh(false); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	absDoomed, _ := filepath.Abs(doomed)
	if _, ok := idx.LookupHash(absDoomed); ok {
		t.Error("Expected deleted file to be pruned from entries")
	}
	absKeep, _ := filepath.Abs(keep)
	if _, ok := idx.LookupHash(absKeep); !ok {
		t.Error("Expected surviving file to remain indexed")
	}
}

func TestRefresh_PrunesAdHocEntriesToo(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	otherDir := t.TempDir()

	// Recorded directly, not via any tracked root
	adHoc := writeFile(t, otherDir, "adhoc.txt", "adhoc")
	if err := idx.RecordHash(adHoc); err != nil {
		t.Fatalf("RecordHash failed: %v", err)
	}

	if err := os.Remove(adHoc); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}

	if err := idx.Refresh(false); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if _, ok := idx.LookupHash(adHoc); ok {
		t.Error("Expected pruning to apply to entries outside any tracked root")
	}
}

func TestRefresh_PrunesDeletedRoots(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	parent := t.TempDir()

	doomedRoot := filepath.Join(parent, "doomed")
	if err := os.MkdirAll(doomedRoot, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	survivor := t.TempDir()

	if err := idx.Scan(doomedRoot); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if err := idx.Scan(survivor); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if err := os.RemoveAll(doomedRoot); err != nil {
		t.Fatalf("Failed to remove root: %v", err)
	}

	if err := idx.Refresh(false); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	absSurvivor, _ := filepath.Abs(survivor)
	roots := idx.Roots()
	if len(roots) != 1 || roots[0] != absSurvivor {
		t.Errorf("Expected only surviving root %s, got %v", absSurvivor, roots)
	}
}

func TestRefresh_DiscoversNewFiles(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	tempDir := t.TempDir()

	writeFile(t, tempDir, "old.txt", "old")
	if err := idx.Scan(tempDir); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	newFile := writeFile(t, tempDir, "new.txt", "new")

	if err := idx.Refresh(false); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	absNew, _ := filepath.Abs(newFile)
	if _, ok := idx.LookupHash(absNew); !ok {
		t.Error("Expected refresh to discover files created after the scan")
	}
}

func TestRefresh_DeepScanRecomputes(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	tempDir := t.TempDir()

	path := writeFile(t, tempDir, "mutable.txt", "before")
	if err := idx.Scan(tempDir); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	absPath, _ := filepath.Abs(path)
	original, _ := idx.LookupHash(absPath)

	writeFile(t, tempDir, "mutable.txt", "after")

	// Shallow refresh leaves the stale hash alone
	if err := idx.Refresh(false); err != nil {
		t.Fatalf("Shallow refresh failed: %v", err)
	}
	shallow, _ := idx.LookupHash(absPath)
	if shallow != original {
		t.Errorf("Expected shallow refresh to keep hash %s, got %s", original, shallow)
	}

	// Deep refresh recomputes it
	if err := idx.Refresh(true); err != nil {
		t.Fatalf("Deep refresh failed: %v", err)
	}
	deep, _ := idx.LookupHash(absPath)
	if deep == original {
		t.Error("Expected deep refresh to update the hash for changed content")
	}

	want, err := HashFileToHexString(absPath, 0)
	if err != nil {
		t.Fatalf("Failed to hash file: %v", err)
	}
	if deep != want {
		t.Errorf("Expected recomputed hash %s, got %s", want, deep)
	}
}

func TestRefresh_SavesUnconditionally(t *testing.T) {
	idx, entriesPath, rootsPath := newTestIndex(t)
	tempDir := t.TempDir()
	writeFile(t, tempDir, "a.txt", "alpha")

	if err := idx.Scan(tempDir); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// Scan alone persisted nothing; refresh must, even with nothing to change
	if err := idx.Refresh(false); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	reloaded := reloadIndex(t, entriesPath, rootsPath)
	if reloaded.Len() != 1 {
		t.Errorf("Expected refresh to persist 1 entry, got %d", reloaded.Len())
	}
	if len(reloaded.Roots()) != 1 {
		t.Errorf("Expected refresh to persist 1 root, got %d", len(reloaded.Roots()))
	}

	// A second refresh with no changes still rewrites the stores
	if err := os.Remove(entriesPath); err != nil {
		t.Fatalf("Failed to remove entries store: %v", err)
	}
	if err := idx.Refresh(false); err != nil {
		t.Fatalf("Second refresh failed: %v", err)
	}
	if _, err := os.Stat(entriesPath); err != nil {
		t.Error("Expected refresh to save even when nothing changed")
	}
}
