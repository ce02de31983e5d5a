package config

import (
	"os"
	"strconv"
)

// FromEnv overlays CROSSTALK_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("CROSSTALK_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("CROSSTALK_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CROSSTALK_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("CROSSTALK_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CROSSTALK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CROSSTALK_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("CROSSTALK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CROSSTALK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
