package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBranch = "master"
	DefaultAbbrev = 7
)

// Config stores repository-local settings from .gitlet/config.toml.
type Config struct {
	Core   CoreConfig   `toml:"core"`
	Commit CommitConfig `toml:"commit"`
}

type CoreConfig struct {
	DefaultBranch string `toml:"default_branch"`
	Timezone      string `toml:"timezone"`
	Abbrev        int    `toml:"abbrev"`
}

type CommitConfig struct {
	Sign       bool   `toml:"sign"`
	SigningKey string `toml:"signing_key"`
}

// DefaultConfig returns the configuration written by a plain Init.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch: DefaultBranch,
			Timezone:      "Local",
			Abbrev:        DefaultAbbrev,
		},
	}
}

// normalize fills zero values with defaults.
func (c *Config) normalize() {
	if strings.TrimSpace(c.Core.DefaultBranch) == "" {
		c.Core.DefaultBranch = DefaultBranch
	}
	if strings.TrimSpace(c.Core.Timezone) == "" {
		c.Core.Timezone = "Local"
	}
	if c.Core.Abbrev <= 0 || c.Core.Abbrev > 64 {
		c.Core.Abbrev = DefaultAbbrev
	}
}

// Location returns the time zone commits are timestamped in.
func (c *Config) Location() (*time.Location, error) {
	if c == nil {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Core.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: core.timezone %q: %w", c.Core.Timezone, err)
	}
	return loc, nil
}

// Validate checks settings that cannot be corrected by defaulting.
func (c *Config) Validate() error {
	if err := ValidateBranchName(c.Core.DefaultBranch); err != nil {
		return fmt.Errorf("config: core.default_branch: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func configPath(gitletDir string) string {
	return filepath.Join(gitletDir, "config.toml")
}

// ReadConfig reads .gitlet/config.toml. A missing file yields the defaults;
// unknown keys are rejected.
func ReadConfig(gitletDir string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(configPath(gitletDir), cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("read config: unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.normalize()
	return cfg, nil
}

// WriteConfig atomically writes .gitlet/config.toml.
func WriteConfig(gitletDir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(configPath(gitletDir), buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
