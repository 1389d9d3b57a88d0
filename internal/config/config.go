package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"envfence/internal/guard"
	"envfence/internal/rules"
)

// EnvPatterns is the per-environment rule configuration. Pattern literals
// wrapped in slashes ("/^node:/") are regular expressions, everything
// else is a glob.
type EnvPatterns struct {
	Specifiers []string `yaml:"specifiers"`
	Files      []string `yaml:"files"`
}

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`

	// Env pins the execution environment for the whole build. Empty
	// means the host's per-call flag decides.
	Env  string `yaml:"env"`
	Mode string `yaml:"mode"` // abort | advise

	MaxDepth   int   `yaml:"max_depth"`
	Directives *bool `yaml:"directives"` // default true
	Verbose    bool  `yaml:"verbose"`

	Client          EnvPatterns `yaml:"client"`
	Server          EnvPatterns `yaml:"server"`
	IgnoreImporters []string    `yaml:"ignore_importers"`

	Preset struct {
		Enabled bool     `yaml:"enabled"`
		Exclude []string `yaml:"exclude"`
	} `yaml:"preset"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Mode = string(guard.ModeAbort)
	return cfg
}

// LoadConfig reads the YAML config and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, err
	}
	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}

	// 3. Override with environment variables if present
	if mode := os.Getenv("ENVFENCE_MODE"); mode != "" {
		cfg.Mode = mode
	}
	if env := os.Getenv("ENVFENCE_ENV"); env != "" {
		cfg.Env = env
	}

	return cfg, nil
}

// Options compiles the configuration into guard options. User-declared
// patterns come before preset patterns, so a user rule wins the
// first-match position in diagnostics.
func (c *Config) Options() (guard.Options, error) {
	switch c.Mode {
	case "", string(guard.ModeAbort), string(guard.ModeAdvise):
	default:
		return guard.Options{}, fmt.Errorf("invalid mode %q (want abort or advise)", c.Mode)
	}
	switch c.Env {
	case "", string(rules.EnvClient), string(rules.EnvServer):
	default:
		return guard.Options{}, fmt.Errorf("invalid env %q (want client or server)", c.Env)
	}

	client, err := compileEnv(c.Client)
	if err != nil {
		return guard.Options{}, err
	}
	server, err := compileEnv(c.Server)
	if err != nil {
		return guard.Options{}, err
	}

	if c.Preset.Enabled {
		excluded, err := compileList(c.Preset.Exclude)
		if err != nil {
			return guard.Options{}, err
		}
		preset := rules.Preset(rules.PresetOptions{Exclude: excluded})
		client.Specifiers = append(client.Specifiers, preset.Client.Specifiers...)
		server.Specifiers = append(server.Specifiers, preset.Server.Specifiers...)
	}

	ignore, err := compileList(c.IgnoreImporters)
	if err != nil {
		return guard.Options{}, err
	}

	opts := guard.Options{
		Root:              c.Project.Root,
		Rules:             rules.RuleSet{Client: client, Server: server},
		Ignore:            ignore,
		Env:               rules.Env(c.Env),
		MaxDepth:          c.MaxDepth,
		DisableDirectives: c.Directives != nil && !*c.Directives,
		Mode:              guard.Mode(c.Mode),
		Verbose:           c.Verbose,
	}
	return opts, nil
}

func compileEnv(ep EnvPatterns) (rules.EnvRules, error) {
	specifiers, err := compileList(ep.Specifiers)
	if err != nil {
		return rules.EnvRules{}, err
	}
	files, err := compileList(ep.Files)
	if err != nil {
		return rules.EnvRules{}, err
	}
	return rules.EnvRules{Specifiers: specifiers, Files: files}, nil
}

func compileList(literals []string) ([]rules.Pattern, error) {
	if len(literals) == 0 {
		return nil, nil
	}
	out := make([]rules.Pattern, 0, len(literals))
	for _, lit := range literals {
		p, err := rules.Parse(lit)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
