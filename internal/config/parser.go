package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAMLOverlay reads path and unmarshals it directly onto cfg's
// yaml-tagged fields, overlaying whatever values are already present.
// Fields absent from the file are left untouched. A missing file is
// reported as an error like any other read failure; the underlying error
// is wrapped, so errors.Is(err, fs.ErrNotExist) identifies that case.
func LoadYAMLOverlay(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
