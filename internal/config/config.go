// Package config defines service configuration and its loader.
//
// Values are layered defaults -> optional YAML file -> environment.
package config

import (
	"github.com/okian/mergington/internal/domain/catalogue"
	"github.com/okian/mergington/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// ChangeQueueSize bounds the roster change queue.
	ChangeQueueSize int `koanf:"change_queue_size"`

	// ChangeWorkers sets the number of roster change workers.
	ChangeWorkers int `koanf:"change_workers"`

	// ServiceName is reported as the tracing resource name.
	ServiceName string `koanf:"service_name"`

	// OTelEndpoint is the OTLP/HTTP collector URL. Empty disables tracing export.
	OTelEndpoint string `koanf:"otel_endpoint"`

	// Activities seeds the registry. Only settable from the YAML file.
	Activities map[string]model.Activity `koanf:"activities"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8000",
		ChangeQueueSize: 1024,
		ChangeWorkers:   2,
		ServiceName:     "mergington-activities",
		Activities:      catalogue.Default(),
	}
}
