package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/daveroberts0321/socmap/parser/socmap"
)

// ConfigFileName is the project manifest looked up by FindConfig.
const ConfigFileName = "socmap.toml"

// Config is the decoded project manifest.
type Config struct {
	Path    string        `toml:"-"`
	Root    string        `toml:"-"`
	Project ProjectConfig `toml:"project"`
	Build   BuildConfig   `toml:"build"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	Maps      []string `toml:"maps"`
	OutDir    string   `toml:"out_dir"`
	Header    bool     `toml:"header"`
	Strict    bool     `toml:"strict"`
	AddrWidth int      `toml:"addr_width"`
	Jobs      int      `toml:"jobs"`
	NoCache   bool     `toml:"no_cache"`
}

// DefaultConfig returns the configuration used for keys a manifest omits.
func DefaultConfig() Config {
	return Config{
		Build: BuildConfig{
			Maps:      []string{"maps"},
			OutDir:    "generated",
			AddrWidth: 64,
		},
	}
}

// FindConfig walks from startDir towards the filesystem root looking for
// socmap.toml. It returns false when none exists.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig decodes the manifest at path and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return nil, fmt.Errorf("%s: missing [project].name", path)
	}
	if len(cfg.Build.Maps) == 0 {
		return nil, fmt.Errorf("%s: [build].maps must name at least one file or directory", path)
	}
	if strings.TrimSpace(cfg.Build.OutDir) == "" {
		return nil, fmt.Errorf("%s: [build].out_dir must not be empty", path)
	}
	if err := socmap.CheckAddrWidth(cfg.Build.AddrWidth); err != nil {
		return nil, fmt.Errorf("%s: [build].addr_width: %w", path, err)
	}
	if cfg.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	return &cfg, nil
}

// resolve makes p absolute relative to the project root.
func (c *Config) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// MapPaths returns the [build].maps entries resolved against the project root.
func (c *Config) MapPaths() []string {
	paths := make([]string, 0, len(c.Build.Maps))
	for _, entry := range c.Build.Maps {
		paths = append(paths, c.resolve(entry))
	}
	return paths
}

// OutDir is the absolute output directory.
func (c *Config) OutDir() string {
	return c.resolve(c.Build.OutDir)
}
