package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultDir resolves the state directory lazily so a failing home
// lookup falls back to the working directory instead of silently
// producing rooted paths.
func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sshsync")
}

func DefaultConfigPath() string { return filepath.Join(defaultDir(), "config.yaml") }

func DefaultLogPath() string { return filepath.Join(defaultDir(), "sshsync.log") }

func DefaultLockPath() string { return filepath.Join(defaultDir(), "sshsync.lock") }

// Load reads and validates the host mapping at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: '%s'", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config read '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrParse, path, err)
	}

	return &cfg, nil
}
