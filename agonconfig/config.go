// Package agonconfig loads optional encode/cache settings from YAML, so
// a deployment can pin agon.Options and a shared Redis fragment cache
// in one file instead of wiring flags through every call site.
package agonconfig

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/kestrelfmt/agon"
)

// Config is the top-level shape of an agonconfig YAML document.
type Config struct {
	Format     string  `yaml:"format"`
	Force      bool    `yaml:"force"`
	MinSavings float64 `yaml:"min_savings"`
	Encoding   string  `yaml:"encoding"`
	Delimiter  string  `yaml:"delimiter"`
	ASCII      bool    `yaml:"ascii"`
	Cache      *Cache  `yaml:"cache"`
}

// Cache configures the shared token-count fragment cache (tokencount's
// optional Redis backend).
type Cache struct {
	Redis *Redis `yaml:"redis"`
}

// Redis addresses a go-redis client used as the fragment cache backend.
type Redis struct {
	Addr      string `yaml:"addr"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Load parses a YAML document into a Config.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("agonconfig: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads and parses the YAML document at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agonconfig: %w", err)
	}
	return Load(data)
}

// EncodeOptions translates Config into agon.Options, ready to pass to
// agon.Encode or client.New.
func (c *Config) EncodeOptions() agon.Options {
	format := agon.Format(c.Format)
	if format == "" {
		format = agon.FormatAuto
	}
	return agon.Options{
		Format:     format,
		Force:      c.Force,
		MinSavings: c.MinSavings,
		Encoding:   c.Encoding,
		Delimiter:  c.Delimiter,
		ASCII:      c.ASCII,
	}
}
