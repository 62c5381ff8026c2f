package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Load layers every configuration source onto cfg, lowest precedence
// first: the YAML file (--config or PLOT_CONFIG), the environment, then
// command-line flags. cfg should start from [DefaultConfig].
//
// Flags are parsed twice: once to discover --config, and again after the
// file and environment so that they win.
func Load(cfg *Config, args []string, version string) error {
	firstPass := *cfg
	if err := ParseFlags(&firstPass, args, version); err != nil {
		return err
	}

	path := firstPass.ConfigFile
	if path == "" {
		path = os.Getenv("PLOT_CONFIG")
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return err
		}
		cfg.ConfigFile = path
	}

	if err := LoadEnv(cfg); err != nil {
		return err
	}
	return ParseFlags(cfg, args, version)
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from
// the file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays environment variables onto cfg. Only variables that are
// set are applied; envconfig leaves the remaining fields untouched.
func LoadEnv(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	return nil
}
