// Package config loads and validates server configuration from env and an
// optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds server configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// RedisAddr enables Redis-backed refresh and revocation storage when set.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis AUTH password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// RedisDB selects the Redis logical database.
	RedisDB int `mapstructure:"REDIS_DB"`
	// AccessTokenSecret signs access tokens. Required.
	AccessTokenSecret string `mapstructure:"ACCESS_TOKEN_SECRET"`
	// RefreshTokenSecret signs refresh tokens. Required and must differ from
	// AccessTokenSecret.
	RefreshTokenSecret string `mapstructure:"REFRESH_TOKEN_SECRET"`
	// JWTIssuer is the iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength int `mapstructure:"PASSWORD_MIN_LENGTH"`
	// RotateRefreshTokens enables refresh-token rotation on each refresh.
	RotateRefreshTokens bool `mapstructure:"ROTATE_REFRESH_TOKENS"`
	// SweepInterval is the background sweep cadence (e.g. "1h"); "0" disables.
	SweepInterval string `mapstructure:"SWEEP_INTERVAL"`
	// AuditEnabled toggles the async audit dispatcher.
	AuditEnabled bool `mapstructure:"AUDIT_ENABLED"`
	// MetricsEnabled toggles counters and the /metrics endpoint.
	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ISSUER", "skillswap-auth")
	v.SetDefault("JWT_AUDIENCE", "skillswap-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("PASSWORD_MIN_LENGTH", 10)
	v.SetDefault("ROTATE_REFRESH_TOKENS", false)
	v.SetDefault("SWEEP_INTERVAL", "1h")
	v.SetDefault("AUDIT_ENABLED", true)
	v.SetDefault("METRICS_ENABLED", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.AccessTokenSecret == "" {
		return nil, errors.New("config: ACCESS_TOKEN_SECRET must be set")
	}
	if cfg.RefreshTokenSecret == "" {
		return nil, errors.New("config: REFRESH_TOKEN_SECRET must be set")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if cfg.PasswordMinLength < 1 {
		return nil, errors.New("config: PASSWORD_MIN_LENGTH must be at least 1")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// SweepEvery parses SweepInterval. Returns 0 (disabled) if unset or invalid.
func (c *Config) SweepEvery() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
