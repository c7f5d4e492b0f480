package config

import (
	"fmt"
	"net"
)

// Validate checks configuration correctness. It performs declarative
// validation only and MUST NOT mutate configuration (mirrors the
// teacher's internal/config/validate.go contract).
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	if cfg.Stream.Host == "" {
		return fmt.Errorf("stream: host required")
	}
	if net.ParseIP(cfg.Stream.Host) == nil {
		return fmt.Errorf("stream: host %q is not a literal IPv4/IPv6 address (DNS resolution is out of scope)", cfg.Stream.Host)
	}
	// Port == 0 means "use the default" and is normalized after Validate
	// runs; anything else must be a real TCP port.
	if cfg.Stream.Port < 0 || cfg.Stream.Port > 65535 {
		return fmt.Errorf("stream: port %d out of range", cfg.Stream.Port)
	}

	switch cfg.Stream.LogLevel {
	case "", "info", "error":
	default:
		return fmt.Errorf("stream: log_level %q must be one of: info, error", cfg.Stream.LogLevel)
	}

	return nil
}
