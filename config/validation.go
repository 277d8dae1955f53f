package config

import (
	"errors"
	"fmt"
	"strings"
)

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	var errs []string

	if s.Address == "" {
		errs = append(errs, "address cannot be empty")
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, "read_timeout must be positive")
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, "write_timeout must be positive")
	}
	if s.IdleTimeout <= 0 {
		errs = append(errs, "idle_timeout must be positive")
	}
	if s.ReadHeaderTimeout <= 0 {
		errs = append(errs, "read_header_timeout must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "shutdown_timeout must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate validates storage configuration
func (s *StorageConfig) Validate() error {
	var errs []string

	if !oneOf(s.Adapter, "memory", "redis", "sql", "file") {
		errs = append(errs, "adapter must be one of: memory, redis, sql, file")
	}

	switch s.Adapter {
	case "redis":
		if s.Redis.Addr == "" {
			errs = append(errs, "redis config: addr cannot be empty")
		}
	case "sql":
		if !oneOf(string(s.SQL.Driver), "postgres", "mysql") {
			errs = append(errs, "sql config: driver must be one of: postgres, mysql")
		}
		if s.SQL.DSN == "" {
			errs = append(errs, "sql config: dsn cannot be empty")
		}
	case "file":
		if err := s.File.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("file config: %v", err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate validates file storage configuration
func (f *FileConfig) Validate() error {
	if f.Path == "" {
		return errors.New("path cannot be empty")
	}
	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	if !oneOf(l.Level, "debug", "info", "warn", "error") {
		errs = append(errs, "level must be one of: debug, info, warn, error")
	}
	if !oneOf(l.Format, "json", "text") {
		errs = append(errs, "format must be one of: json, text")
	}
	if !oneOf(l.Output, "stdout", "stderr") {
		errs = append(errs, "output must be one of: stdout, stderr")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate validates metrics configuration
func (m *MetricsConfig) Validate() error {
	var errs []string

	if m.Enabled {
		if m.Address == "" {
			errs = append(errs, "address cannot be empty when metrics are enabled")
		}
		if m.Path == "" {
			errs = append(errs, "path cannot be empty when metrics are enabled")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
