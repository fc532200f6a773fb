package config

import (
	"time"

	"kleotrust/native/lending"
)

// Trust configures the trust event history.
type Trust struct {
	MaxEvents  int `toml:"MaxEvents" yaml:"maxEvents"`
	MaxWallets int `toml:"MaxWallets" yaml:"maxWallets"`
}

// Log configures log output. Logs go to stdout unless File is set.
type Log struct {
	Level      string `toml:"Level" yaml:"level"`
	File       string `toml:"File" yaml:"file"`
	MaxSizeMB  int    `toml:"MaxSizeMB" yaml:"maxSizeMB"`
	MaxBackups int    `toml:"MaxBackups" yaml:"maxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays" yaml:"maxAgeDays"`
}

// Observability toggles metrics and tracing on the HTTP surface.
type Observability struct {
	ServiceName   string `toml:"ServiceName" yaml:"serviceName"`
	MetricsPrefix string `toml:"MetricsPrefix" yaml:"metricsPrefix"`
	Metrics       bool   `toml:"Metrics" yaml:"metrics"`
	Tracing       bool   `toml:"Tracing" yaml:"tracing"`
	LogRequests   bool   `toml:"LogRequests" yaml:"logRequests"`
}

// RateLimit bounds per-client request rates.
type RateLimit struct {
	RequestsPerMinute float64 `toml:"RequestsPerMinute" yaml:"requestsPerMinute"`
	Burst             int     `toml:"Burst" yaml:"burst"`
}

// CORS lists the origins allowed to call the API.
type CORS struct {
	AllowedOrigins []string `toml:"AllowedOrigins" yaml:"allowedOrigins"`
}

// Config is the trustd runtime configuration.
type Config struct {
	ListenAddress   string                     `toml:"ListenAddress" yaml:"listen"`
	NetworkPrefix   uint16                     `toml:"NetworkPrefix" yaml:"networkPrefix"`
	ReadTimeout     time.Duration              `toml:"ReadTimeout" yaml:"readTimeout"`
	WriteTimeout    time.Duration              `toml:"WriteTimeout" yaml:"writeTimeout"`
	ShutdownTimeout time.Duration              `toml:"ShutdownTimeout" yaml:"shutdownTimeout"`
	Trust           Trust                      `toml:"Trust" yaml:"trust"`
	Tiers           []lending.TierRequirements `toml:"Tiers" yaml:"tiers"`
	Log             Log                        `toml:"Log" yaml:"log"`
	Observability   Observability              `toml:"Observability" yaml:"observability"`
	RateLimit       RateLimit                  `toml:"RateLimit" yaml:"rateLimit"`
	CORS            CORS                       `toml:"CORS" yaml:"cors"`
}

// TierTable returns the configured tier table, or the default table when no
// tiers are configured.
func (c *Config) TierTable() (lending.TierTable, error) {
	if len(c.Tiers) == 0 {
		return lending.DefaultTierTable(), nil
	}
	return lending.NewTierTable(c.Tiers)
}
