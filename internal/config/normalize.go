package config

// Normalize applies post-validation normalization. It is allowed to
// mutate configuration and MUST be called only after Validate() (mirrors
// the teacher's internal/config/normalize.go contract).
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Stream.Port == 0 {
		cfg.Stream.Port = 7765 // device.DefaultPort, duplicated here to
		// avoid config depending on the device package.
	}
	if cfg.Stream.LatencyMs < 1 {
		cfg.Stream.LatencyMs = 1
	}
	if cfg.Stream.TargetPointRate == 0 {
		cfg.Stream.TargetPointRate = 30000
	}
}
