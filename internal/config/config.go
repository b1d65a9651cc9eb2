package config

import (
	"os"
	"path/filepath"
	"time"
)

// PackagerConfig controls where bot templates live, where archives are
// written, and what gets skipped while copying a template tree.
type PackagerConfig struct {
	StateDir        string
	ZipsDir         string
	ExcludePatterns []string
	DebounceWindow  time.Duration
	QueueSize       int
}

type Config struct {
	DataDir      string
	DatabasePath string
	LogLevel     string
	Packager     PackagerConfig
}

func Load() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := envOr("CC_DATA_DIR", filepath.Join(homeDir, ".crisis-center"))

	return &Config{
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "platform.db"),
		LogLevel:     envOr("CC_LOG_LEVEL", "info"),
		Packager: PackagerConfig{
			StateDir:       envOr("CC_STATE_DIR", filepath.Join(dataDir, "state")),
			ZipsDir:        envOr("CC_ZIPS_DIR", filepath.Join(dataDir, "zips")),
			DebounceWindow: 300 * time.Millisecond,
			QueueSize:      64,
			ExcludePatterns: []string{
				"**/.git/**",
				"**/__pycache__/**",
				"**/*.pyc",
				"**/.DS_Store",
				"**/node_modules/**",
			},
		},
	}
}

func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.Packager.StateDir, c.Packager.ZipsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
