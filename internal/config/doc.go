// Package config provides loading and environment overlay for the crosstalk
// CLI configuration: which store backend to use, how to reach it, and how to
// log.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/crosstalk.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
