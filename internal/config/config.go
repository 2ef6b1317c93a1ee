// Package config handles repository configuration and the resolution policy.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoRepository is returned when no .refmark directory is found in the
// start path or any of its parents.
var ErrNoRepository = errors.New("not in a refmark repository (no .refmark directory found)")

// Config represents repository configuration stored in .refmark/config.json.
type Config struct {
	DefaultBibliography string `json:"default_bibliography,omitempty"` // Output .bib path relative to repo root
	CrossrefMailto      string `json:"crossref_mailto,omitempty"`      // Contact email for the Crossref polite pool
}

const (
	RefmarkDir  = ".refmark"
	ConfigFile  = "config.json"
	RecordsFile = "records.jsonl"
	PolicyFile  = "refmark.yaml"
	CacheDir    = "cache"
	DBFile      = "records.db"
)

// RefmarkPath returns the path to the .refmark directory from a root path.
func RefmarkPath(root string) string {
	return filepath.Join(root, RefmarkDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RefmarkDir, ConfigFile)
}

// RecordsPath returns the path to records.jsonl from a root path.
func RecordsPath(root string) string {
	return filepath.Join(root, RefmarkDir, RecordsFile)
}

// PolicyPath returns the path to refmark.yaml from a root path.
func PolicyPath(root string) string {
	return filepath.Join(root, RefmarkDir, PolicyFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RefmarkDir, CacheDir)
}

// DBPath returns the path to records.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RefmarkDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a refmark repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RefmarkPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a refmark repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoRepository
		}
		abs = parent
	}
}

// Init creates a refmark repository at the given root: the .refmark
// directory, an empty records file, and a default config. Returns an error
// if a repository already exists there.
func Init(root string) error {
	if IsRepository(root) {
		return fmt.Errorf("refmark repository already exists at %s", root)
	}

	if err := os.MkdirAll(RefmarkPath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", RefmarkDir, err)
	}

	f, err := os.OpenFile(RecordsPath(root), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}
	f.Close()

	cfg := &Config{}
	if err := cfg.Save(root); err != nil {
		return err
	}

	return nil
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
