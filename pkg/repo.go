package fileindex

import (
	"fmt"
	"os"
	"path/filepath"
)

// RepoDirName is the per-repository state directory holding the config file
// and, by default, both store files.
const RepoDirName = ".fidx"

// OpenRepository opens (or initialises) the index repository rooted at dir.
// The .fidx directory is created if missing, the config file is loaded or
// created with defaults, the verbose settings from the config are applied,
// and the Index is opened against the configured store. Overrides are
// "key:value" strings applied on top of the config file.
func OpenRepository(dir string, overrides []string) (*Index, error) {
	fidxPath := filepath.Join(dir, RepoDirName)

	// Prevent nesting a repository inside another repository's state dir
	if filepath.Base(dir) == RepoDirName {
		return nil, fmt.Errorf("cannot create %s repository inside another %s directory: %s", RepoDirName, RepoDirName, dir)
	}

	if err := os.MkdirAll(fidxPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory %s: %w", RepoDirName, fidxPath, err)
	}

	config, err := LoadConfig(fidxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", fidxPath, err)
	}

	if len(overrides) > 0 {
		if err := config.ApplyOverrides(overrides); err != nil {
			return nil, fmt.Errorf("failed to apply configuration overrides: %w", err)
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	verboseConfig := config.GetVerboseConfig()
	if verboseConfig.Level > GetVerboseLevel() {
		SetVerboseLevel(verboseConfig.Level)
	}
	if verboseConfig.Debug != "" {
		SetDebugFlags(verboseConfig.Debug)
	}

	store, err := storeFromConfig(fidxPath, config)
	if err != nil {
		return nil, err
	}

	idx, err := Open(store, config)
	if err != nil {
		store.Close()
		return nil, err
	}
	return idx, nil
}

// storeFromConfig builds the configured store. Ephemeral wins over configured
// paths so the no-durable-state intent stays visible in the config rather
// than falling back to temp files silently.
func storeFromConfig(fidxPath string, config *Config) (Store, error) {
	storeConfig := config.GetStoreConfig()

	if storeConfig.Ephemeral {
		return NewEphemeralStore()
	}

	entriesPath := storeConfig.Entries
	if !filepath.IsAbs(entriesPath) {
		entriesPath = filepath.Join(fidxPath, entriesPath)
	}
	rootsPath := storeConfig.Roots
	if !filepath.IsAbs(rootsPath) {
		rootsPath = filepath.Join(fidxPath, rootsPath)
	}

	return NewFileStore(entriesPath, rootsPath)
}

// FindRepoDir returns the repository root by searching upward from the
// current directory for a .fidx directory.
func FindRepoDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// A cwd inside the state dir itself counts as its parent repository
	if filepath.Base(cwd) == RepoDirName {
		return resolveRepoDir(filepath.Dir(cwd)), nil
	}

	dir := cwd
	for {
		fidxPath := filepath.Join(dir, RepoDirName)
		if info, err := os.Stat(fidxPath); err == nil && info.IsDir() {
			return resolveRepoDir(dir), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("not a fidx repository (or any of the parent directories): %s directory not found", RepoDirName)
}

// resolveRepoDir resolves symlinks, falling back to the original path
func resolveRepoDir(dir string) string {
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return dir
	}
	return realDir
}
