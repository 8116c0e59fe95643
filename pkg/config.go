package fileindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// DefaultHashWorkers is the number of concurrent hash workers used when no
// configuration is available.
const DefaultHashWorkers = 4

// Config represents the fileindex configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// StoreConfig represents persistence configuration
type StoreConfig struct {
	Entries   string // Path to the entries store (JSON object)
	Roots     string // Path to the roots store (JSON array)
	Ephemeral bool   // Use temp-backed stores removed on Close
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 4)
	HashBuffer  string // Hash read buffer size (default: "64K")
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// AllConfig represents all configuration options
type AllConfig struct {
	Store       *StoreConfig
	Performance *PerformanceConfig
	Verbose     *VerboseConfig
}

// LoadConfig loads configuration from the config file in configDir, creating
// a default one on first use.
func LoadConfig(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, "config")

	cfg := &Config{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	} else {
		iniFile, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ini = iniFile
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	storeSection, err := c.ini.NewSection("store")
	if err != nil {
		return fmt.Errorf("failed to create store section: %w", err)
	}
	if _, err = storeSection.NewKey("entries", "file_index.json"); err != nil {
		return fmt.Errorf("failed to set default entries path: %w", err)
	}
	if _, err = storeSection.NewKey("roots", "scanned_directories.json"); err != nil {
		return fmt.Errorf("failed to set default roots path: %w", err)
	}
	if _, err = storeSection.NewKey("ephemeral", "false"); err != nil {
		return fmt.Errorf("failed to set default ephemeral flag: %w", err)
	}

	performanceSection, err := c.ini.NewSection("performance")
	if err != nil {
		return fmt.Errorf("failed to create performance section: %w", err)
	}
	if _, err = performanceSection.NewKey("hash_workers", "4"); err != nil {
		return fmt.Errorf("failed to set default hash workers: %w", err)
	}
	if _, err = performanceSection.NewKey("hash_buffer", "64K"); err != nil {
		return fmt.Errorf("failed to set default hash buffer: %w", err)
	}

	verboseSection, err := c.ini.NewSection("verbose")
	if err != nil {
		return fmt.Errorf("failed to create verbose section: %w", err)
	}
	if _, err = verboseSection.NewKey("level", "0"); err != nil {
		return fmt.Errorf("failed to set default verbose level: %w", err)
	}
	if _, err = verboseSection.NewKey("debug", ""); err != nil {
		return fmt.Errorf("failed to set default debug flags: %w", err)
	}

	return nil
}

// GetStoreConfig returns the persistence configuration
func (c *Config) GetStoreConfig() *StoreConfig {
	storeConfig := &StoreConfig{
		Entries:   "file_index.json",          // fallback default
		Roots:     "scanned_directories.json", // fallback default
		Ephemeral: false,                      // fallback default
	}

	if c.ini.HasSection("store") {
		section := c.ini.Section("store")
		if section.HasKey("entries") {
			if path := section.Key("entries").String(); path != "" {
				storeConfig.Entries = path
			}
		}
		if section.HasKey("roots") {
			if path := section.Key("roots").String(); path != "" {
				storeConfig.Roots = path
			}
		}
		if section.HasKey("ephemeral") {
			if ephemeral, err := section.Key("ephemeral").Bool(); err == nil {
				storeConfig.Ephemeral = ephemeral
			}
		}
	}

	return storeConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: DefaultHashWorkers, // fallback default
		HashBuffer:  "64K",              // fallback default
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Level: 0,  // fallback default
		Debug: "", // fallback default
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Store:       c.GetStoreConfig(),
		Performance: c.GetPerformanceConfig(),
		Verbose:     c.GetVerboseConfig(),
	}
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	return c.ini.SaveTo(c.configPath)
}

// ApplyOverrides applies command-line overrides to the configuration.
// Accepts strings like "entries:/path/index.json", "hash_workers:8",
// "level:2", "debug:scan"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "entries":
			c.ini.Section("store").Key("entries").SetValue(value)
		case "roots":
			c.ini.Section("store").Key("roots").SetValue(value)
		case "ephemeral":
			c.ini.Section("store").Key("ephemeral").SetValue(value)
		case "hash_workers":
			c.ini.Section("performance").Key("hash_workers").SetValue(value)
		case "hash_buffer":
			c.ini.Section("performance").Key("hash_buffer").SetValue(value)
		case "level":
			c.ini.Section("verbose").Key("level").SetValue(value)
		case "debug":
			c.ini.Section("verbose").Key("debug").SetValue(value)
		default:
			return fmt.Errorf("unsupported override key '%s' (supported: entries, roots, ephemeral, hash_workers, hash_buffer, level, debug)", key)
		}
	}

	return nil
}

// Validate validates all configuration options
func (c *Config) Validate() error {
	allConfig := c.GetAllConfig()

	if err := ValidateHashWorkers(allConfig.Performance.HashWorkers); err != nil {
		return err
	}
	if _, err := ParseHumanSize(allConfig.Performance.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash_buffer: %w", err)
	}
	if err := ValidateVerboseLevel(allConfig.Verbose.Level); err != nil {
		return err
	}

	return nil
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("hash workers must be at least 1, got: %d", workers)
	}
	if workers > 64 {
		return fmt.Errorf("hash workers should not exceed 64, got: %d", workers)
	}
	return nil
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}
