package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/svitlosync/core/factory"
	"github.com/kilianp07/svitlosync/core/metrics"
)

type Config struct {
	Source    SourceConfig           `json:"source"`
	Publisher PublisherConfig        `json:"publisher"`
	Sync      SyncConfig             `json:"sync"`
	Store     StoreConfig            `json:"store"`
	Mirrors   []factory.ModuleConfig `json:"mirrors"`
	Metrics   metrics.Config         `json:"metrics"`
	Logging   LoggingConfig          `json:"logging"`
	Sentry    SentryConfig           `json:"sentry"`
	API       APIConfig              `json:"api"`
}

// Load reads the file at path, applies K_ environment overrides and validates
// the result. A .env file next to the config, when present, is loaded into the
// process environment first.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for commands that only inspect stored
// state. Defaults are applied.
func Read(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(filepath.Dir(path), ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. K_PUBLISHER__CHANNEL_KEY maps to
	// publisher.channel_key.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills every section's defaults.
func (c *Config) SetDefaults() {
	c.Source.SetDefaults()
	c.Publisher.SetDefaults()
	c.Sync.SetDefaults()
	c.Store.SetDefaults()
	c.Logging.SetDefaults()
}

// ValidateStorage checks only what is needed to read stored weeks: the
// timezone, the store backend and logging.
func (c Config) ValidateStorage() error {
	if _, err := c.Source.Location(); err != nil {
		return fmt.Errorf("source: timezone: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Validate checks every section. Errors name the offending section.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"source", c.Source.Validate},
		{"publisher", c.Publisher.Validate},
		{"sync", c.Sync.Validate},
		{"store", c.Store.Validate},
		{"logging", c.Logging.Validate},
		{"sentry", c.Sentry.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	for i, m := range c.Mirrors {
		if m.Type == "" {
			return fmt.Errorf("mirrors[%d]: type is required", i)
		}
	}
	return nil
}
