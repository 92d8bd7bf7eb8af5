package config

import "os"

// Config holds oracle configuration.
type Config struct {
	SpecDir          string
	LogLevel         string
	OTLPEndpoint     string
	TelemetryEnabled bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	specDir := os.Getenv("VERIDICT_SPEC_DIR")
	if specDir == "" {
		specDir = "specs"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	otlpEndpoint := os.Getenv("OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	telemetryEnabled := os.Getenv("TELEMETRY_ENABLED") == "true"

	return &Config{
		SpecDir:          specDir,
		LogLevel:         logLevel,
		OTLPEndpoint:     otlpEndpoint,
		TelemetryEnabled: telemetryEnabled,
	}
}
