package fileindex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	tempDir := t.TempDir()

	config, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	storeConfig := config.GetStoreConfig()
	if storeConfig.Entries != "file_index.json" {
		t.Errorf("Expected default entries store 'file_index.json', got '%s'", storeConfig.Entries)
	}
	if storeConfig.Roots != "scanned_directories.json" {
		t.Errorf("Expected default roots store 'scanned_directories.json', got '%s'", storeConfig.Roots)
	}
	if storeConfig.Ephemeral {
		t.Error("Expected ephemeral to default to false")
	}

	performanceConfig := config.GetPerformanceConfig()
	if performanceConfig.HashWorkers != DefaultHashWorkers {
		t.Errorf("Expected default hash workers %d, got %d", DefaultHashWorkers, performanceConfig.HashWorkers)
	}
	if performanceConfig.HashBuffer != "64K" {
		t.Errorf("Expected default hash buffer '64K', got '%s'", performanceConfig.HashBuffer)
	}

	// Config file created on first load
	configPath := filepath.Join(tempDir, "config")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

func TestConfigOverrides(t *testing.T) {
	tempDir := t.TempDir()

	config, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	err = config.ApplyOverrides([]string{
		"entries:/var/idx/entries.json",
		"hash_workers:8",
		"hash_buffer:2M",
		"level:2",
		"debug:scan,refresh",
	})
	if err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	allConfig := config.GetAllConfig()
	if allConfig.Store.Entries != "/var/idx/entries.json" {
		t.Errorf("Expected overridden entries path, got '%s'", allConfig.Store.Entries)
	}
	if allConfig.Performance.HashWorkers != 8 {
		t.Errorf("Expected 8 hash workers after override, got %d", allConfig.Performance.HashWorkers)
	}
	if allConfig.Performance.HashBuffer != "2M" {
		t.Errorf("Expected hash buffer '2M' after override, got '%s'", allConfig.Performance.HashBuffer)
	}
	if allConfig.Verbose.Level != 2 {
		t.Errorf("Expected verbose level 2 after override, got %d", allConfig.Verbose.Level)
	}
	if allConfig.Verbose.Debug != "scan,refresh" {
		t.Errorf("Expected debug flags 'scan,refresh', got '%s'", allConfig.Verbose.Debug)
	}
}

func TestConfigOverrides_Invalid(t *testing.T) {
	tempDir := t.TempDir()

	config, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if err := config.ApplyOverrides([]string{"no-colon-here"}); err == nil {
		t.Error("Expected error for override without colon")
	}
	if err := config.ApplyOverrides([]string{"bogus:value"}); err == nil {
		t.Error("Expected error for unknown override key")
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()

	config, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to validate: %v", err)
	}

	if err := config.ApplyOverrides([]string{"hash_workers:0"}); err != nil {
		t.Fatalf("Failed to apply override: %v", err)
	}
	if err := config.Validate(); err == nil {
		t.Error("Expected validation failure for zero hash workers")
	}

	if err := config.ApplyOverrides([]string{"hash_workers:4", "hash_buffer:banana"}); err != nil {
		t.Fatalf("Failed to apply override: %v", err)
	}
	if err := config.Validate(); err == nil {
		t.Error("Expected validation failure for unparseable hash buffer")
	}
}

func TestConfigPersistsAcrossLoads(t *testing.T) {
	tempDir := t.TempDir()

	config, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if err := config.ApplyOverrides([]string{"hash_workers:16"}); err != nil {
		t.Fatalf("Failed to apply override: %v", err)
	}
	if err := config.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if reloaded.GetPerformanceConfig().HashWorkers != 16 {
		t.Errorf("Expected persisted hash workers 16, got %d", reloaded.GetPerformanceConfig().HashWorkers)
	}
}

func TestValidateHashWorkers(t *testing.T) {
	if err := ValidateHashWorkers(0); err == nil {
		t.Error("Expected error for 0 workers")
	}
	if err := ValidateHashWorkers(65); err == nil {
		t.Error("Expected error for 65 workers")
	}
	if err := ValidateHashWorkers(1); err != nil {
		t.Errorf("Expected 1 worker to be valid: %v", err)
	}
	if err := ValidateHashWorkers(64); err != nil {
		t.Errorf("Expected 64 workers to be valid: %v", err)
	}
}

func TestValidateVerboseLevel(t *testing.T) {
	if err := ValidateVerboseLevel(-1); err == nil {
		t.Error("Expected error for level -1")
	}
	if err := ValidateVerboseLevel(4); err == nil {
		t.Error("Expected error for level 4")
	}
	for level := 0; level <= 3; level++ {
		if err := ValidateVerboseLevel(level); err != nil {
			t.Errorf("Expected level %d to be valid: %v", level, err)
		}
	}
}
