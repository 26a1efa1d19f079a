package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  Methods lists the HTTP methods to cache (e.g. GET, HEAD).  TTL
// defines the lifetime of cache entries.  KeyStrategy determines which parts
// of the request contribute to the cache key.  Prefix and MaxBodyBytes allow
// control over namespacing and the maximum size of responses to cache.
type CacheConfig struct {
	Enabled      bool          `env:"ENABLED"        envDefault:"true"`
	Methods      []string      `env:"METHODS"        envDefault:"GET"`
	TTL          time.Duration `env:"TTL"            envDefault:"30s"`
	KeyStrategy  string        `env:"KEY_STRATEGY"   envDefault:"route_query"`
	Prefix       string        `env:"PREFIX"         envDefault:"cache"`
	MaxBodyBytes int           `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Sanitize upper-cases and trims the configured methods and fills defaults.
func (c *CacheConfig) Sanitize() {
	out := c.Methods[:0]
	for _, m := range c.Methods {
		m = strings.TrimSpace(strings.ToUpper(m))
		if m != "" {
			out = append(out, m)
		}
	}
	c.Methods = out
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
}

// Caches reports whether responses to the given method are cacheable.
func (c CacheConfig) Caches(method string) bool {
	method = strings.ToUpper(method)
	for _, m := range c.Methods {
		if m == method {
			return true
		}
	}
	return false
}
