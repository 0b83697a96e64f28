// Package config loads IntentFlow settings from an optional YAML file plus
// environment variables (.env supported via godotenv). Every field has a
// working default so a zero-config start still answers queries, on the
// rule-based fallback path when no provider credentials are present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level IntentFlow configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Routing   RoutingConfig   `yaml:"routing"`
	Memory    MemoryConfig    `yaml:"memory"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ModelConfig selects the generative provider and its call bounds.
type ModelConfig struct {
	// Provider is "openai", "anthropic" or "none" (forces rule-based mode).
	Provider string `yaml:"provider"`
	// Name overrides the provider's default model id.
	Name string `yaml:"name"`
	// Timeout bounds each outbound model call.
	Timeout time.Duration `yaml:"timeout"`
}

// RoutingConfig tunes the orchestrator.
type RoutingConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// MemoryConfig tunes conversation memory.
type MemoryConfig struct {
	MaxTurns int           `yaml:"max_turns"`
	TTL      time.Duration `yaml:"ttl"`
	// RedisURL switches the store to Redis when set (e.g. "redis://localhost:6379/0").
	RedisURL string `yaml:"redis_url"`
}

// KnowledgeConfig tunes the retriever.
type KnowledgeConfig struct {
	// DocsPath is the root of the markdown corpus ("" disables lookup).
	DocsPath string `yaml:"docs_path"`
	// IndexPath persists the embedding index ("" disables persistence).
	IndexPath    string `yaml:"index_path"`
	RetrieveK    int    `yaml:"retrieve_k"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Model: ModelConfig{
			Provider: "openai",
			Timeout:  30 * time.Second,
		},
		Routing: RoutingConfig{ConfidenceThreshold: 0.7},
		Memory: MemoryConfig{
			MaxTurns: 10,
			TTL:      30 * time.Minute,
		},
		Knowledge: KnowledgeConfig{
			DocsPath:     "data/knowledge",
			IndexPath:    "data/index/knowledge.json",
			RetrieveK:    3,
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
	}
}

// Load reads configuration from path layered over the defaults. An empty
// path (or a missing file at the default location) yields plain defaults.
// A .env file in the working directory is loaded first so provider API keys
// can live beside the config.
func Load(path string) (*Config, error) {
	// best effort; absence of a .env file is the normal case
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
