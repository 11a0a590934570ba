// Package cli provides shared configuration and utilities for the sqlq CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const maxWalkDepth = 25

// Output formats accepted by the render command.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the sqlq CLI configuration from sqlq.yaml.
type Config struct {
	// Format selects render output: "text" or "json".
	Format string `mapstructure:"format"`

	Render RenderConfig `mapstructure:"render"`
}

// RenderConfig holds render command settings.
type RenderConfig struct {
	// ShowValues controls whether bound parameter values are printed
	// alongside the SQL text.
	ShowValues bool `mapstructure:"show_values"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none
// found), and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Defaults first (lowest precedence)
	v.SetDefault("format", FormatText)
	v.SetDefault("render.show_values", true)

	// 2. Environment variable binding
	v.SetEnvPrefix("SQLQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Format != FormatText && cfg.Format != FormatJSON {
		return nil, configPath, fmt.Errorf("invalid format %q: want %q or %q", cfg.Format, FormatText, FormatJSON)
	}

	return &cfg, configPath, nil
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for sqlq.yaml or sqlq.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"sqlq.yaml", "sqlq.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Stop at the repo boundary.
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}

	return "", nil // no config found, use defaults
}
