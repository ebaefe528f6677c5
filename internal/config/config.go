// Package config loads the snapshot settings: where the storage root lives and where the
// snapshot list is displayed.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the first workspace root.
const FileName = ".snapshot.yaml"

// DefaultPath is the workspace-relative directory that holds .snapshot.
const DefaultPath = ".vscode"

// Environment overrides, applied after the config file.
const (
	EnvPath         = "SNAPSHOT_PATH"
	EnvTreeLocation = "SNAPSHOT_TREE_LOCATION"
)

// ErrInvalidConfiguredPath means an absolute storage path does not exist.
var ErrInvalidConfiguredPath = errors.New("the specified path is invalid, replace with the default path")

// TreeLocation selects the view that shows the snapshot list. It never affects storage.
type TreeLocation string

const (
	TreeExplorer TreeLocation = "explorer"
	TreeSnapshot TreeLocation = "snapshot"
)

// Valid reports whether l is a known location.
func (l TreeLocation) Valid() bool {
	return l == TreeExplorer || l == TreeSnapshot
}

// RootKind tells how StorageRoot.Dir is anchored.
type RootKind int

const (
	Relative RootKind = iota
	Absolute
)

func (k RootKind) String() string {
	if k == Absolute {
		return "absolute"
	}
	return "relative"
}

// StorageRoot is the configured base of the snapshot storage directory.
type StorageRoot struct {
	Kind RootKind
	Dir  string
}

// Config holds all snapshot configuration.
type Config struct {
	TreeLocation TreeLocation `yaml:"tree_location"`
	Path         string       `yaml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if !c.TreeLocation.Valid() {
		c.TreeLocation = TreeExplorer
	}
	if strings.TrimSpace(c.Path) == "" {
		c.Path = DefaultPath
	}
}

// Root resolves the configured path into a StorageRoot. An absolute path that does not
// exist falls back to the default relative root and returns ErrInvalidConfiguredPath
// alongside it; callers treat that as a warning.
func (c *Config) Root() (StorageRoot, error) {
	p := c.Path
	if strings.TrimSpace(p) == "" {
		p = DefaultPath
	}
	if !filepath.IsAbs(p) {
		return StorageRoot{Kind: Relative, Dir: p}, nil
	}
	if _, err := os.Stat(p); err != nil {
		return StorageRoot{Kind: Relative, Dir: DefaultPath}, errors.Wrapf(ErrInvalidConfiguredPath, "%s", p)
	}
	return StorageRoot{Kind: Absolute, Dir: p}, nil
}

// Validate rejects settings that should not be persisted: an unknown tree location or an
// absolute path that does not exist.
func (c *Config) Validate() error {
	if c.TreeLocation != "" && !c.TreeLocation.Valid() {
		return errors.Errorf("unknown tree location %q", c.TreeLocation)
	}
	_, err := c.Root()
	return err
}

// Load reads a YAML config file. A missing file yields the defaults. Environment
// overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if v := os.Getenv(EnvPath); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv(EnvTreeLocation); v != "" {
		cfg.TreeLocation = TreeLocation(v)
	}
	cfg.defaults()
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory when needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write config %s", path)
}
