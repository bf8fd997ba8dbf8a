package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Geocoding contains configuration for the reverse-geocoding providers.
type Geocoding struct {
	Service           string `toml:"service"`
	Precision         int    `toml:"precision"`
	UserAgent         string `toml:"user_agent"`
	RequestTimeout    int    `toml:"request_timeout"`
	MinRequestGap     int    `toml:"min_request_gap"`
	NominatimBaseURL  string `toml:"nominatim_base_url"`
	OpenCageBaseURL   string `toml:"opencage_base_url"`
	LocationIQBaseURL string `toml:"locationiq_base_url"`
}

// Workflow contains run timing configuration.
type Workflow struct {
	ResultTimeout     int `toml:"result_timeout"`
	QueuePollInterval int `toml:"queue_poll_interval"`
}

// Journal contains configuration for the run journal database.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: <cache_dir>/journal.db
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photosort.
//
// Configuration sections by subsystem:
//   - Paths: cache directory (durable stores, lock, journal) and log output
//   - Geocoding: preferred provider, precision, endpoints, pacing
//   - Workflow: producer/worker timing
//   - Journal: run history database
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Geocoding Geocoding `toml:"geocoding"`
	Workflow  Workflow  `toml:"workflow"`
	Journal   Journal   `toml:"journal"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photosort/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A missing file is not an error;
// defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photosort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureCacheDir creates the cache directory holding durable state.
func (c *Config) EnsureCacheDir() error {
	if err := os.MkdirAll(c.Paths.CacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %q: %w", c.Paths.CacheDir, err)
	}
	return nil
}

// LocationCacheFile returns the path of the persisted location cache.
func (c *Config) LocationCacheFile() string {
	return filepath.Join(c.Paths.CacheDir, "location_cache.json")
}

// AliasFile returns the path of the persisted alias table.
func (c *Config) AliasFile() string {
	return filepath.Join(c.Paths.CacheDir, "location_aliases.json")
}

// ServiceKeysFile returns the path of the persisted provider API keys.
func (c *Config) ServiceKeysFile() string {
	return filepath.Join(c.Paths.CacheDir, "service_keys.json")
}

// JournalPath returns the run journal database path.
func (c *Config) JournalPath() string {
	if strings.TrimSpace(c.Journal.Path) != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.Paths.CacheDir, "journal.db")
}

// LockPath returns the path of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.CacheDir, "photosort.lock")
}

// ExiftoolBinary returns the metadata extraction executable name.
func (c *Config) ExiftoolBinary() string {
	return "exiftool"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
