// Package config loads the optional project file (datascript.yaml /
// datascript.json) that records module search paths, a default
// document-store URI, and a default collection query limit. Of these, only
// DefaultURI is used elsewhere, and only for display by `run --verbose`; the
// module loader and the DSL do not read the file. There is exactly one flat struct — a struct-tag-driven env
// loader would be overkill for three fields, so environment overrides are
// applied by hand in Load.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the flat project-file shape. Zero value is a usable default:
// no extra search paths, no default URI (host must supply one via `using
// mongo from <uri>` or `connect(uri)`), and a query limit of 0 (unlimited).
type Config struct {
	ModulePaths  []string `yaml:"modulePaths"`
	DefaultURI   string   `yaml:"defaultURI"`
	DefaultLimit int      `yaml:"defaultLimit"`
}

// Default returns the zero-value Config described above.
func Default() Config {
	return Config{}
}

// Load reads and parses a datascript.yaml/datascript.json project file at
// path. A missing file is not an error — it returns Default() unchanged,
// since the project file itself is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

// applyEnv lets DATASCRIPT_DEFAULT_URI override whatever the project file
// set, mirroring the native `env` function's host-side os.Getenv reliance
// rather than pulling in a struct-tag env-loading framework.
func applyEnv(cfg Config) Config {
	if uri := os.Getenv("DATASCRIPT_DEFAULT_URI"); uri != "" {
		cfg.DefaultURI = uri
	}
	return cfg
}
