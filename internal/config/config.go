// Package config loads the CLI's YAML-backed configuration: default
// scope/step bounds, CDCL solver tuning, and logging defaults, merged
// from a project-local file over a user-global one, field by field.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kevinawalsh/alloysat/internal/sat"
)

// File is the on-disk shape of a config.yaml document; every field is
// optional, so a file can override just the knobs it cares about.
type File struct {
	DefaultScope *int     `yaml:"defaultScope,omitempty"`
	DefaultSteps *int     `yaml:"defaultSteps,omitempty"`
	Solver       *Solver  `yaml:"solver,omitempty"`
	Logging      *Logging `yaml:"logging,omitempty"`
}

// Solver mirrors the tunable subset of sat.Options.
type Solver struct {
	Decay               *float64 `yaml:"decay,omitempty"`
	RestartBase         *int     `yaml:"restartBase,omitempty"`
	MaxLearnedInitial   *int     `yaml:"maxLearnedInitial,omitempty"`
	MaxLearnedIncrement *int     `yaml:"maxLearnedIncrement,omitempty"`
}

// Logging mirrors internal/logging.Init's parameters.
type Logging struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Config is the fully merged, defaulted configuration the CLI runs with.
type Config struct {
	DefaultScope int
	DefaultSteps int
	Solver       sat.Options
	LogLevel     string
	LogFile      string
}

// Default returns the documented defaults (spec.md §6: default scope 3,
// default steps 10 for temporal models; sat.DefaultOptions for solver
// tuning; info-level logging to stdout only).
func Default() Config {
	return Config{
		DefaultScope: 3,
		DefaultSteps: 10,
		Solver:       sat.DefaultOptions(),
		LogLevel:     "info",
	}
}

// UserPath returns the user-global config file path, honoring
// $XDG_CONFIG_HOME when set.
func UserPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "alloysat", "config.yaml")
}

// ProjectPath returns the project-local override file for dir.
func ProjectPath(dir string) string {
	return filepath.Join(dir, ".alloysat.yaml")
}

func load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads the user-global config, then the project-local one (if
// projectDir is non-empty), and merges them field by field over the
// documented defaults: project overrides user overrides default.
func Load(projectDir string) (Config, error) {
	cfg := Default()

	user, err := load(UserPath())
	if err != nil {
		return cfg, err
	}
	merge(&cfg, user)

	if projectDir != "" {
		project, err := load(ProjectPath(projectDir))
		if err != nil {
			return cfg, err
		}
		merge(&cfg, project)
	}
	return cfg, nil
}

// merge overlays f's present fields onto cfg; a nil field leaves cfg's
// current value (the prior layer's, or the default) untouched.
func merge(cfg *Config, f *File) {
	if f == nil {
		return
	}
	if f.DefaultScope != nil {
		cfg.DefaultScope = *f.DefaultScope
	}
	if f.DefaultSteps != nil {
		cfg.DefaultSteps = *f.DefaultSteps
	}
	if f.Solver != nil {
		if f.Solver.Decay != nil {
			cfg.Solver.VarDecay = *f.Solver.Decay
			cfg.Solver.ClauseDecay = *f.Solver.Decay
		}
		if f.Solver.RestartBase != nil {
			cfg.Solver.RestartBase = *f.Solver.RestartBase
		}
		if f.Solver.MaxLearnedInitial != nil {
			cfg.Solver.MaxLearnedInitial = *f.Solver.MaxLearnedInitial
		}
		if f.Solver.MaxLearnedIncrement != nil {
			cfg.Solver.MaxLearnedIncrement = *f.Solver.MaxLearnedIncrement
		}
	}
	if f.Logging != nil {
		if f.Logging.Level != "" {
			cfg.LogLevel = f.Logging.Level
		}
		if f.Logging.File != "" {
			cfg.LogFile = f.Logging.File
		}
	}
}
