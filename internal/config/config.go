// Package config provides configuration loading for richdoc.
//
// Configuration comes from three layers, lowest priority first:
// built-in defaults, a TOML file, and RICHDOC_* environment variables.
// A missing config file is not an error.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/richdoc/internal/doc"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "RICHDOC_"

// Config holds the editor host settings.
type Config struct {
	// DefaultBlockType is the block type new documents start with and
	// type toggles revert to. Must be a non-list, non-item block type.
	DefaultBlockType string `toml:"default_block_type"`

	// ThemePath is the path to the YAML theme file. Empty selects the
	// built-in theme.
	ThemePath string `toml:"theme_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Keymap maps key chords to format tokens, e.g. "Ctrl+B" = "bold"
	// or "F3" = "bulleted-list". Missing entries fall back to the
	// defaults.
	Keymap map[string]string `toml:"keymap"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DefaultBlockType: string(doc.Paragraph),
		LogLevel:         "info",
		Keymap: map[string]string{
			"Ctrl+B": "bold",
			"Ctrl+I": "italic",
			"Ctrl+U": "underline",
			"Ctrl+E": "code",
			"F1":     "heading-one",
			"F2":     "heading-two",
			"F3":     "bulleted-list",
			"F4":     "numbered-list",
			"F5":     "block-quote",
			"F6":     "left",
			"F7":     "center",
			"F8":     "right",
			"F9":     "justify",
		},
	}
}

// Load reads configuration from path, layering it over the defaults
// and applying environment overrides. A missing file yields defaults
// plus environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Not an error; defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays RICHDOC_* environment variables.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvPrefix + "DEFAULT_BLOCK_TYPE"); ok {
		cfg.DefaultBlockType = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "THEME_PATH"); ok {
		cfg.ThemePath = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	t := doc.BlockType(c.DefaultBlockType)
	if !t.Valid() || t.IsList() || t == doc.ListItem || t == doc.Editor {
		return fmt.Errorf("invalid default_block_type %q", c.DefaultBlockType)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	for chord, token := range c.Keymap {
		if _, err := doc.ParseFormat(token); err != nil {
			if _, merr := doc.ParseMark(token); merr != nil {
				return fmt.Errorf("keymap %q: unknown format token %q", chord, token)
			}
		}
	}
	return nil
}
