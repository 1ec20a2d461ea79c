package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	// Server
	ServerPort int

	// External providers
	GeocoderBaseURL   string
	IrradianceBaseURL string // empty disables measured irradiance lookups

	// Audit trail (InfluxDB)
	AuditEnabled   bool
	InfluxURL      string
	InfluxToken    string
	InfluxDatabase string

	// Audit batching
	BatchSize     int
	FlushInterval int // milliseconds

	// Tables
	PricingFile string // optional YAML override for energy pricing

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Logging
	LogLevel string
	LogDir   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		GeocoderBaseURL:   getEnv("GEOCODER_BASE_URL", "https://api.postcodes.io"),
		IrradianceBaseURL: getEnv("IRRADIANCE_BASE_URL", ""),

		AuditEnabled:   getEnvBool("AUDIT_ENABLED", false),
		InfluxURL:      getEnv("INFLUXDB_URL", "http://localhost:8086"),
		InfluxToken:    getEnv("INFLUXDB_TOKEN", ""),
		InfluxDatabase: getEnv("INFLUXDB_DATABASE", "solar_estimates"),

		BatchSize:     getEnvInt("BATCH_SIZE", 100),
		FlushInterval: getEnvInt("FLUSH_INTERVAL", 1000),

		PricingFile: getEnv("PRICING_FILE", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogDir:   getEnv("LOG_DIRECTORY", "./logs"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.GeocoderBaseURL == "" {
		return fmt.Errorf("GEOCODER_BASE_URL must not be empty")
	}

	if c.BatchSize < 1 || c.BatchSize > 10000 {
		return fmt.Errorf("invalid BATCH_SIZE: %d (must be 1-10000)", c.BatchSize)
	}

	if c.FlushInterval < 50 || c.FlushInterval > 60000 {
		return fmt.Errorf("invalid FLUSH_INTERVAL: %d (must be 50-60000ms)", c.FlushInterval)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit: %v rps, burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}

	if c.AuditEnabled && c.InfluxURL == "" {
		return fmt.Errorf("INFLUXDB_URL is required when AUDIT_ENABLED is set")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
