package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Store != "redis" {
		t.Fatalf("default store")
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("default redis addr")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("default log level")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "crosstalk.json")
	data := []byte(`{"store":"pebble","dataDir":"/tmp/ct","fsync":"never","log":{"level":"debug"}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != "pebble" {
		t.Fatalf("expected pebble")
	}
	if cfg.DataDir != "/tmp/ct" {
		t.Fatalf("expected /tmp/ct")
	}
	if cfg.Fsync != "never" {
		t.Fatalf("expected never")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug")
	}
	// Unset fields keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr default lost")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "crosstalk.yaml")
	data := []byte("store: redis\nredis:\n  addr: redis.internal:6380\n  db: 2\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Fatalf("expected redis.internal:6380, got %q", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 2 {
		t.Fatalf("expected db 2")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("CROSSTALK_STORE", "memory")
	os.Setenv("CROSSTALK_REDIS_ADDR", "elsewhere:6379")
	os.Setenv("CROSSTALK_REDIS_DB", "3")
	os.Setenv("CROSSTALK_LOG_LEVEL", "warn")
	t.Cleanup(func() {
		os.Unsetenv("CROSSTALK_STORE")
		os.Unsetenv("CROSSTALK_REDIS_ADDR")
		os.Unsetenv("CROSSTALK_REDIS_DB")
		os.Unsetenv("CROSSTALK_LOG_LEVEL")
	})
	FromEnv(&cfg)
	if cfg.Store != "memory" {
		t.Fatalf("env override store")
	}
	if cfg.Redis.Addr != "elsewhere:6379" {
		t.Fatalf("env override addr")
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("env override db")
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("env override level")
	}
}

func TestDefaultDataDirXDG(t *testing.T) {
	original := os.Getenv("XDG_DATA_HOME")
	os.Setenv("XDG_DATA_HOME", "/custom/data")
	t.Cleanup(func() {
		if original != "" {
			os.Setenv("XDG_DATA_HOME", original)
		} else {
			os.Unsetenv("XDG_DATA_HOME")
		}
	})
	if got := DefaultDataDir(); got != "/custom/data/crosstalk" {
		t.Fatalf("expected /custom/data/crosstalk, got %s", got)
	}
}
