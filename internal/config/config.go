// Package config loads the interpreter-wide tunables that sit outside the
// language itself: initial/maximum stack sizing, call-depth limits, and a
// list of import search paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level copper.yaml shape.
type Config struct {
	Stack  StackConfig  `yaml:"stack"`
	Call   CallConfig   `yaml:"call"`
	Import ImportConfig `yaml:"import"`
}

// StackConfig bounds the VM's value stack growth.
type StackConfig struct {
	// InitialSize preallocates the value stack's backing array.
	InitialSize int `yaml:"initial_size,omitempty"`
	// MaxSize is the hard ceiling; exceeding it is a FatalError. 0 means
	// unbounded.
	MaxSize int `yaml:"max_size,omitempty"`
}

// CallConfig bounds function-call recursion.
type CallConfig struct {
	// MaxDepth caps how many nested CallFunc frames may be in flight at
	// once. 0 means unbounded to the VM, but Parse treats an explicit 0 like
	// an omitted value and applies the default.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// ImportConfig controls where import "..." literals may resolve.
type ImportConfig struct {
	// SearchPaths is read from the config file and kept on Config. Import
	// resolution does not consult it: an import resolves only relative to
	// the importing file.
	SearchPaths []string `yaml:"search_paths,omitempty"`
}

const (
	defaultInitialStackSize = 256
	defaultMaxStackSize     = 0
	defaultMaxCallDepth     = 1024
)

// Default returns the tunables used when no copper.yaml is present.
func Default() Config {
	return Config{
		Stack: StackConfig{InitialSize: defaultInitialStackSize, MaxSize: defaultMaxStackSize},
		Call:  CallConfig{MaxDepth: defaultMaxCallDepth},
	}
}

// Load reads and parses a copper.yaml file, filling any omitted field from
// Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses copper.yaml content from bytes, applying Default() for any
// field the document omits.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Stack.InitialSize == 0 {
		c.Stack.InitialSize = defaultInitialStackSize
	}
	if c.Call.MaxDepth == 0 {
		c.Call.MaxDepth = defaultMaxCallDepth
	}
}

// Find searches for copper.yaml starting from dir and walking up to parent
// directories. Returns "" with a nil error if none is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "copper.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		candidate = filepath.Join(dir, "copper.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
