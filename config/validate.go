package config

import (
	"errors"
	"fmt"
	"strings"

	"kleotrust/crypto"
)

// MaxTrustEvents bounds the history cap to keep snapshots cheap.
const MaxTrustEvents = 10000

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("%w: ListenAddress required", ErrInvalidConfig)
	}
	if _, err := crypto.NewCodec(c.NetworkPrefix); err != nil {
		return fmt.Errorf("%w: NetworkPrefix: %v", ErrInvalidConfig, err)
	}
	if c.Trust.MaxEvents < 1 || c.Trust.MaxEvents > MaxTrustEvents {
		return fmt.Errorf("%w: Trust.MaxEvents must be within [1, %d]", ErrInvalidConfig, MaxTrustEvents)
	}
	if c.Trust.MaxWallets < 1 {
		return fmt.Errorf("%w: Trust.MaxWallets must be positive", ErrInvalidConfig)
	}
	if _, err := c.TierTable(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: RateLimit values must be non-negative", ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: timeouts must be non-negative", ErrInvalidConfig)
	}
	return nil
}
