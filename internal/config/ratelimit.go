package config

import "time"

// RateLimitConfig configures the Redis token bucket placed in front of the
// authentication endpoints.  Each key starts with Capacity tokens and gains
// RefillTokens every RefillInterval.
type RateLimitConfig struct {
	Enabled        bool          `env:"ENABLED"         envDefault:"true"`
	Capacity       int           `env:"CAPACITY"        envDefault:"10"`
	RefillTokens   int           `env:"REFILL_TOKENS"   envDefault:"1"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"6s"`
	TTL            time.Duration `env:"TTL"             envDefault:"10m"`
	KeyStrategy    string        `env:"KEY_STRATEGY"    envDefault:"ip_route"`
	Prefix         string        `env:"PREFIX"          envDefault:"rl"`
	Debug          bool          `env:"DEBUG"           envDefault:"false"`
}

// Sanitize clamps values that would make the limiter misbehave.
func (c *RateLimitConfig) Sanitize() {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	// keep the bucket alive long enough to refill at least a few times
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	if c.Prefix == "" {
		c.Prefix = "rl"
	}
}
