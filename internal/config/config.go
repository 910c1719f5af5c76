package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type FusionConfig struct {
	EntityThreshold    float64 `toml:"entity_threshold"`
	RelationThreshold  float64 `toml:"relation_threshold"`
	Grouping           string  `toml:"grouping"`
	ConfidenceStrategy string  `toml:"confidence_strategy"`
	PropertyStrategy   string  `toml:"property_strategy"`
}

type ConflictConfig struct {
	// Strategies maps a conflict kind to the strategy that overrides
	// the kind's default.
	Strategies map[string]string `toml:"strategies"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Enabled  bool   `toml:"enabled"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Fusion   FusionConfig   `toml:"fusion"`
	Conflict ConflictConfig `toml:"conflict"`
	Memgraph MemgraphConfig `toml:"memgraph"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Fusion: FusionConfig{
			EntityThreshold:    0.8,
			RelationThreshold:  0.8,
			Grouping:           "seed",
			ConfidenceStrategy: "weighted_average",
			PropertyStrategy:   "union",
		},
		Conflict: ConflictConfig{Strategies: map[string]string{}},
		Memgraph: MemgraphConfig{URI: "bolt://localhost:7687"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
		c.Memgraph.Enabled = true
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
}
