// File: internal/services/usage/config.go
package usage

import "fmt"

// Config holds the admission-control quotas. Restricted models require an
// authenticated caller and draw from their own daily quota; everything else
// is standard tier, with separate anonymous and authenticated limits. All
// quotas reset on UTC calendar-day rollover.
type Config struct {
	AnonymousDailyLimit     int
	AuthenticatedDailyLimit int
	RestrictedDailyLimit    int
	DailyMemoryLimit        int

	// RestrictedModels names the model IDs gated behind authentication.
	RestrictedModels []string
}

func (c *Config) Validate() error {
	if c.AnonymousDailyLimit <= 0 {
		return fmt.Errorf("anonymous_daily_limit must be positive")
	}
	if c.AuthenticatedDailyLimit <= 0 {
		return fmt.Errorf("authenticated_daily_limit must be positive")
	}
	if c.RestrictedDailyLimit <= 0 {
		return fmt.Errorf("restricted_daily_limit must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		AnonymousDailyLimit:     5,
		AuthenticatedDailyLimit: 100,
		RestrictedDailyLimit:    25,
		DailyMemoryLimit:        200,
		RestrictedModels:        []string{"gpt-4o", "claude-3-5-sonnet", "o3"},
	}
}

// IsRestricted reports whether a model belongs to the restricted tier.
func (c *Config) IsRestricted(modelID string) bool {
	for _, id := range c.RestrictedModels {
		if id == modelID {
			return true
		}
	}
	return false
}
