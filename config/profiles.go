package config

import (
	"fmt"
	"time"
)

// LoadProfile returns the configuration preset for a named deployment
// profile, with environment variables applied on top.
func LoadProfile(name string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Profile = name

	switch name {
	case "development":
		cfg.Environment = EnvDevelopment
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"

	case "testing":
		cfg.Environment = EnvTesting
		cfg.Logging.Level = "warn"
		cfg.Server.ShutdownTimeout = 5 * time.Second

	case "staging":
		cfg.Environment = EnvStaging
		cfg.Security.EnableRateLimit = true

	case "production":
		cfg.Environment = EnvProduction
		cfg.Security.EnableRateLimit = true
		cfg.Server.CORSOrigin = ""
		cfg.Metrics.Enabled = true

	default:
		return nil, fmt.Errorf("unknown config profile: %s", name)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
