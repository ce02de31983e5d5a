package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the crosstalk CLI and demos.
type Config struct {
	// Store selects the backend: "redis", "pebble", or "memory".
	Store string      `json:"store" yaml:"store"`
	Redis RedisConfig `json:"redis" yaml:"redis"`
	// DataDir is where the pebble backend keeps its database.
	DataDir string `json:"dataDir" yaml:"dataDir"`
	// Fsync is the pebble durability mode: always|interval|never.
	Fsync string    `json:"fsync" yaml:"fsync"`
	Log   LogConfig `json:"log" yaml:"log"`
}

// RedisConfig locates the shared Redis server.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	DB       int    `json:"db" yaml:"db"`
	Password string `json:"password" yaml:"password"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Store: "redis",
		Redis: RedisConfig{Addr: "localhost:6379"},
		Fsync: "always",
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
