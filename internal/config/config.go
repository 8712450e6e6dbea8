// Package config holds the server's process-wide, read-mostly
// configuration: the five fields the data model names, loaded from CLI
// flags with an optional YAML overlay.
package config

import (
	"fmt"
	"path/filepath"
)

// Config is the recognized option set. Mutation is reserved for a future
// CONFIG SET; at runtime it is read-shared across the event loop.
type Config struct {
	Dir                     string `yaml:"dir"`
	DBFilename              string `yaml:"dbfilename"`
	Host                    string `yaml:"host"`
	Port                    uint16 `yaml:"port"`
	SnapshotIntervalSeconds uint64 `yaml:"snapshot_interval_seconds"`
	LogDir                  string `yaml:"log_dir"`
	LogLevel                string `yaml:"log_level"`
}

// ApplyDefaults fills zero-valued fields with the documented defaults.
// It does not overwrite fields the caller (flags or YAML) already set.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = "/tmp/redis-data"
	}
	if c.DBFilename == "" {
		c.DBFilename = "dump.rdb"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.SnapshotIntervalSeconds == 0 {
		c.SnapshotIntervalSeconds = 60
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate collects every problem with the configuration rather than
// failing on the first one, so a misconfigured deployment gets one useful
// error report instead of a fix-and-rerun loop.
func (c *Config) Validate() error {
	var problems []string

	if c.Dir == "" {
		problems = append(problems, "dir must not be empty")
	}
	if c.DBFilename == "" {
		problems = append(problems, "dbfilename must not be empty")
	}
	if c.Host == "" {
		problems = append(problems, "host must not be empty")
	}
	if c.Port == 0 {
		problems = append(problems, "port must be nonzero")
	}
	if c.LogLevel != "" {
		if _, err := parseLevelName(c.LogLevel); err != nil {
			problems = append(problems, fmt.Sprintf("log_level: %v", err))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidationError reports every configuration problem found in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	msg := "invalid configuration:"
	for _, p := range e.Problems {
		msg += "\n  - " + p
	}
	return msg
}

// SnapshotPath returns the full path to the configured snapshot file.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Dir, c.DBFilename)
}

// ListenAddr returns the host:port string to bind.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Summary renders a one-line human-readable description for startup logs.
func (c *Config) Summary() string {
	return fmt.Sprintf("dir=%s dbfilename=%s listen=%s snapshot_interval=%ds log_level=%s",
		c.Dir, c.DBFilename, c.ListenAddr(), c.SnapshotIntervalSeconds, c.LogLevel)
}

func parseLevelName(s string) (string, error) {
	switch s {
	case "debug", "info", "warn", "error":
		return s, nil
	default:
		return "", fmt.Errorf("unrecognized level %q (want debug, info, warn, or error)", s)
	}
}
