package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kleotrust/native/lending"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trustd.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, defaultListenAddress, cfg.ListenAddress)
	require.Equal(t, 24, cfg.Trust.MaxEvents)
	require.Equal(t, defaultMaxWallets, cfg.Trust.MaxWallets)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, reloaded.ListenAddress)
	require.Equal(t, cfg.ReadTimeout, reloaded.ReadTimeout)
	require.Equal(t, cfg.Trust, reloaded.Trust)
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trustd.toml")
	contents := `ListenAddress = "127.0.0.1:9100"
NetworkPrefix = 42
ReadTimeout = "3s"

[Trust]
MaxEvents = 5
MaxWallets = 2

[[Tiers]]
Tier = 1
MinTokens = 0.0
MaxTokens = 10.0
MinStars = 1
MinVouchers = 0

[[Tiers]]
Tier = 2
MinTokens = 10.0
MaxTokens = 20.0
MinStars = 2
MinVouchers = 1

[Log]
Level = "debug"

[RateLimit]
RequestsPerMinute = 120.0
Burst = 10
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9100", cfg.ListenAddress)
	require.EqualValues(t, 42, cfg.NetworkPrefix)
	require.Equal(t, 3*time.Second, cfg.ReadTimeout)
	require.Equal(t, Trust{MaxEvents: 5, MaxWallets: 2}, cfg.Trust)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 120.0, cfg.RateLimit.RequestsPerMinute)

	table, err := cfg.TierTable()
	require.NoError(t, err)
	tier, ok := table.ClassifyTier(20)
	require.True(t, ok)
	require.Equal(t, lending.Tier2, tier)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trustd.yaml")
	contents := `listen: ":7000"
writeTimeout: 4s
trust:
  maxEvents: 50
observability:
  metrics: true
  tracing: true
cors:
  allowedOrigins: ["https://app.example"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.ListenAddress)
	require.Equal(t, 4*time.Second, cfg.WriteTimeout)
	require.Equal(t, 50, cfg.Trust.MaxEvents)
	require.Equal(t, defaultMaxWallets, cfg.Trust.MaxWallets)
	require.True(t, cfg.Observability.Tracing)
	require.Equal(t, []string{"https://app.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsUnknownTOMLKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trustd.toml")
	require.NoError(t, os.WriteFile(path, []byte("ListenAdress = \":1\"\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	mutations := map[string]func(*Config){
		"reserved prefix":  func(c *Config) { c.NetworkPrefix = 46 },
		"history too big":  func(c *Config) { c.Trust.MaxEvents = MaxTrustEvents + 1 },
		"negative wallets": func(c *Config) { c.Trust.MaxWallets = -1 },
		"tier gap": func(c *Config) {
			c.Tiers = []lending.TierRequirements{
				{Tier: 1, MinTokens: 0, MaxTokens: 10},
				{Tier: 2, MinTokens: 11, MaxTokens: 20},
			}
		},
		"negative burst":   func(c *Config) { c.RateLimit.Burst = -1 },
		"negative timeout": func(c *Config) { c.ReadTimeout = -time.Second },
		"empty listen":     func(c *Config) { c.ListenAddress = " " },
	}
	require.NoError(t, Default().Validate())
	for name, mutate := range mutations {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
