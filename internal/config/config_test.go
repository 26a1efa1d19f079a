package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseVars() map[string]string {
	return map[string]string{
		"DB_USER":    "app",
		"DB_HOST":    "localhost",
		"DB_NAME":    "marketplace",
		"JWT_SECRET": "s3cret",
	}
}

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(baseVars())
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "3306", cfg.DB.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.Expiration)
	assert.Equal(t, "marketplace-api", cfg.Auth.Issuer)
	assert.Equal(t, "marketplace-clients", cfg.Auth.Audience)
	assert.Equal(t, 10, cfg.Hash.BcryptCost)
	assert.Equal(t, "sha256", cfg.Hash.Algorithm)
	assert.Equal(t, []string{"GET"}, cfg.Cache.Methods)
	assert.True(t, cfg.Cache.Caches("get"))
	assert.False(t, cfg.Cache.Caches("POST"))
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, 256, cfg.AMQP.Backlog)
	assert.Equal(t, 5*time.Second, cfg.AMQP.PublishTimeout)
}

func TestFromMap_Overrides(t *testing.T) {
	vars := baseVars()
	vars["JWT_TOKEN_EXPIRATION_TIME"] = "15m"
	vars["JWT_ISSUER"] = "iss"
	vars["JWT_AUDIENCE"] = "aud"
	vars["BCRYPT_SALT"] = "4"
	vars["CRYPTO_ALGORITHM"] = "sha512"
	vars["CACHE_METHODS"] = " get ,head,"

	cfg, err := FromMap(vars)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Auth.Expiration)
	assert.Equal(t, "iss", cfg.Auth.Issuer)
	assert.Equal(t, "aud", cfg.Auth.Audience)
	assert.Equal(t, 4, cfg.Hash.BcryptCost)
	assert.Equal(t, "sha512", cfg.Hash.Algorithm)
	assert.Equal(t, []string{"GET", "HEAD"}, cfg.Cache.Methods)
}

func TestFromMap_MissingRequired(t *testing.T) {
	vars := baseVars()
	delete(vars, "JWT_SECRET")

	_, err := FromMap(vars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromMap_NonPositiveExpiration(t *testing.T) {
	vars := baseVars()
	vars["JWT_TOKEN_EXPIRATION_TIME"] = "0s"

	_, err := FromMap(vars)
	require.Error(t, err)
}

func TestRateLimitSanitize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: -3, RefillInterval: 0, TTL: time.Second}
	c.Sanitize()

	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, time.Second, c.RefillInterval)
	assert.Equal(t, 5*time.Second, c.TTL)
	assert.Equal(t, "rl", c.Prefix)
}

func TestRedisAddress(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Addr: "x:1", Host: "cache", Port: "6380"}.Address())
	assert.Equal(t, "x:1", RedisConfig{Addr: "x:1"}.Address())
	assert.Equal(t, "localhost:6379", RedisConfig{}.Address())
}

func TestFromMap_ExpirationForms(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":   7 * 24 * time.Hour,
		"2w":   14 * 24 * time.Hour,
		"3600": time.Hour,
		"10h":  10 * time.Hour,
		"1.5d": 36 * time.Hour,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			vars := baseVars()
			vars["JWT_TOKEN_EXPIRATION_TIME"] = in

			cfg, err := FromMap(vars)
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Auth.Expiration)
		})
	}
}

func TestParseLifetime_Rejects(t *testing.T) {
	for _, in := range []string{"", "d", "seven days", "7x"} {
		_, err := ParseLifetime(in)
		assert.Error(t, err, in)
	}
}
