package fileindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptStore is returned when a store file exists but cannot be decoded.
// A missing store file is not an error; it yields an empty initial state.
var ErrCorruptStore = errors.New("store file is corrupt")

// Store is the durability boundary for an Index. Load is called once at
// construction; Save is called at the save points (Refresh, Merge, explicit
// Index.Save). The two artefacts are independent: either may be absent on
// first use.
type Store interface {
	// Load reads the persisted entries mapping and roots list. Absent
	// backing files yield empty results, not an error.
	Load() (entries map[string]string, roots []string, err error)

	// Save writes both artefacts. The roots list must round-trip exactly
	// as given, duplicates included.
	Save(entries map[string]string, roots []string) error

	// Close releases any resources held by the store.
	Close() error
}

// FileStore persists an Index as two JSON documents: an object mapping path
// strings to hash strings, and an array of root directory strings.
type FileStore struct {
	entriesPath string
	rootsPath   string
}

// NewFileStore creates a store backed by the given entries and roots files.
// Neither file needs to exist yet.
func NewFileStore(entriesPath, rootsPath string) (*FileStore, error) {
	if entriesPath == "" || rootsPath == "" {
		return nil, fmt.Errorf("store paths must not be empty")
	}
	return &FileStore{
		entriesPath: entriesPath,
		rootsPath:   rootsPath,
	}, nil
}

// Load reads both JSON documents. A missing file is treated as empty state; a
// file that exists but fails to decode reports ErrCorruptStore.
func (fs *FileStore) Load() (map[string]string, []string, error) {
	entries := make(map[string]string)
	roots := []string{}

	if err := loadJSONFile(fs.entriesPath, &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to load entries store %s: %w", fs.entriesPath, err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}

	if err := loadJSONFile(fs.rootsPath, &roots); err != nil {
		return nil, nil, fmt.Errorf("failed to load roots store %s: %w", fs.rootsPath, err)
	}
	if roots == nil {
		roots = []string{}
	}

	return entries, roots, nil
}

// Save writes both JSON documents via a temp file and atomic rename so a
// crash mid-write never leaves a truncated store behind.
func (fs *FileStore) Save(entries map[string]string, roots []string) error {
	if err := saveJSONFile(fs.entriesPath, entries); err != nil {
		return fmt.Errorf("failed to save entries store %s: %w", fs.entriesPath, err)
	}
	if err := saveJSONFile(fs.rootsPath, roots); err != nil {
		return fmt.Errorf("failed to save roots store %s: %w", fs.rootsPath, err)
	}
	return nil
}

// Close is a no-op for a FileStore; the backing files are the durable state.
func (fs *FileStore) Close() error {
	return nil
}

// EphemeralStore is a FileStore over temp files that are removed on Close.
// It exists so callers that want no durable state say so explicitly at the
// call site instead of relying on an implicit temp-file fallback.
type EphemeralStore struct {
	FileStore
	dir string
}

// NewEphemeralStore creates a store backed by temp files in a fresh
// directory. Close removes the directory and everything in it.
func NewEphemeralStore() (*EphemeralStore, error) {
	dir, err := os.MkdirTemp("", "fileindex-")
	if err != nil {
		return nil, fmt.Errorf("failed to create ephemeral store directory: %w", err)
	}

	return &EphemeralStore{
		FileStore: FileStore{
			entriesPath: filepath.Join(dir, "entries.json"),
			rootsPath:   filepath.Join(dir, "roots.json"),
		},
		dir: dir,
	}, nil
}

// Close removes the temp directory backing the store.
func (es *EphemeralStore) Close() error {
	if es.dir == "" {
		return nil
	}
	if err := os.RemoveAll(es.dir); err != nil {
		return fmt.Errorf("failed to remove ephemeral store directory %s: %w", es.dir, err)
	}
	es.dir = ""
	return nil
}

// loadJSONFile decodes path into v, treating a missing file as empty state.
// Decode failures are wrapped with ErrCorruptStore so callers can tell
// corruption apart from absence.
func loadJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	if IsDebugEnabled("store") {
		VerboseLog(3, "loaded %d bytes from %s", len(data), path)
	}
	return nil
}

// saveJSONFile writes v as JSON to path using temp-then-rename.
func saveJSONFile(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	if IsDebugEnabled("store") {
		VerboseLog(3, "wrote %d bytes to %s", len(data), path)
	}
	return nil
}
