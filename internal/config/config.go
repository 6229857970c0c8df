package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	APIURL       string
	LogLevel     string
	HTTPAddr     string
	MetricsAddr  string
	NATSURL      string
	OTELEnabled  bool
	OTELEndpoint string
	ServiceName  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:       getEnv("TODO_API_URL", getEnv("API_URL", "http://localhost:8080")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":3001"),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
		NATSURL:      os.Getenv("NATS_URL"),
		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  getEnv("SERVICE_NAME", "todo-client"),
	}

	// Validation
	var invalid []string
	if u, err := url.Parse(cfg.APIURL); err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		invalid = append(invalid, "TODO_API_URL")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		invalid = append(invalid, "LOG_LEVEL")
	}
	if cfg.OTELEnabled && cfg.OTELEndpoint == "" {
		invalid = append(invalid, "OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid config: %v", invalid)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
