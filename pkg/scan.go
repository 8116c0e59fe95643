package fileindex

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
)

// hashResult carries one computed hash from a worker back to the collector
type hashResult struct {
	path string
	hash string
	err  error
}

// Scan adds directory to the tracked roots and walks its tree recursively,
// hashing every regular file whose absolute path is not yet in the index.
// Already-indexed files are left untouched; re-scanning never overwrites a
// stored hash (only Refresh with deepScan does). Scan does not persist; call
// Save or Refresh to reach durable storage.
func (idx *Index) Scan(directory string) error {
	absDir, err := filepath.Abs(directory)
	if err != nil {
		return fmt.Errorf("failed to resolve directory %s: %w", directory, err)
	}

	idx.roots = append(idx.roots, absDir)

	newFiles, err := idx.collectNewFiles(absDir)
	if err != nil {
		return err
	}

	VerboseLog(2, "scan %s: %d new files", absDir, len(newFiles))
	return idx.hashAndRecord(newFiles)
}

// collectNewFiles walks root and returns the absolute paths of regular files
// not yet present in the index. Walk errors abort and propagate; there is no
// partial recovery mid-walk.
func (idx *Index) collectNewFiles(root string) ([]string, error) {
	var newFiles []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", path, err)
		}

		if _, exists := idx.entries[absPath]; !exists {
			newFiles = append(newFiles, absPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	if IsDebugEnabled("scan") {
		VerboseLog(3, "collectNewFiles %s: %v", root, newFiles)
	}
	return newFiles, nil
}

// hashAndRecord computes hashes for the given paths and upserts them into the
// entries mapping. Hashing fans out across the configured number of workers;
// the resulting mapping is identical to the sequential result. The first
// failure is reported and the remaining work is drained.
func (idx *Index) hashAndRecord(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	workers := idx.hashWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	if workers == 1 {
		for _, path := range paths {
			if err := idx.RecordHash(path); err != nil {
				return err
			}
		}
		return nil
	}

	bufferSize := idx.hashBufferSize()
	jobs := make(chan string, workers)
	results := make(chan hashResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				hash, err := HashFileToHexString(path, bufferSize)
				results <- hashResult{path: path, hash: hash, err: err}
			}
		}()
	}

	go func() {
		for _, path := range paths {
			jobs <- path
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		idx.entries[result.path] = result.hash
	}

	return firstErr
}
