package config

import (
	"fmt"
	"strings"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
)

// InfluxDatabase wraps the InfluxDB v3 client used for the audit trail
type InfluxDatabase struct {
	Client   *influxdb3.Client
	Database string
}

// InitInflux creates the audit-trail database connection. Returns nil
// without error when auditing is disabled.
func InitInflux(cfg *Config) (*InfluxDatabase, error) {
	if !cfg.AuditEnabled {
		return nil, nil
	}

	if cfg.InfluxURL == "" {
		return nil, fmt.Errorf("INFLUXDB_URL is required")
	}
	if cfg.InfluxDatabase == "" {
		return nil, fmt.Errorf("INFLUXDB_DATABASE is required")
	}

	clientConfig := influxdb3.ClientConfig{
		Host:     cfg.InfluxURL,
		Database: cfg.InfluxDatabase,
		WriteOptions: &influxdb3.WriteOptions{
			DefaultTags: map[string]string{
				"source": "solar_estimator",
			},
		},
	}

	// InfluxDB v3 Core may run without auth
	if cfg.InfluxToken != "" {
		clientConfig.Token = cfg.InfluxToken
	}

	client, err := influxdb3.New(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("influx client creation failed: %w", err)
	}

	return &InfluxDatabase{
		Client:   client,
		Database: cfg.InfluxDatabase,
	}, nil
}

// Close shuts down the client
func (db *InfluxDatabase) Close() error {
	if db == nil || db.Client == nil {
		return nil
	}
	return db.Client.Close()
}

// MaskToken hides all but the edges of a token for startup logging
func MaskToken(token string) string {
	if token == "" {
		return "(none)"
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "..." + token[len(token)-4:]
}
