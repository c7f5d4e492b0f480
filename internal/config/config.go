// Package config loads and validates the YAML configuration consumed by
// cmd/etherdream-stream, in the teacher's declarative
// load/validate/normalize style (internal/config/{config,validate,
// normalize}.go in the original modbus-replicator).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level document.
type Config struct {
	Stream StreamConfig `yaml:"stream"`
}

// StreamConfig describes one Ether Dream DAC to stream to.
type StreamConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	LatencyMs       int64  `yaml:"latency_ms"`
	TargetPointRate uint32 `yaml:"target_point_rate"`
	LogLevel        string `yaml:"log_level"`
}

// Load reads and parses a YAML document from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
