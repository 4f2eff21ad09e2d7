package goToken

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goToken/jwt"
	"github.com/caarlos0/env/v11"
)

// Config holds Engine settings. Every field can be set from GOTOKEN_* environment variables
// through LoadConfig.
type Config struct {
	Token   TokenConfig
	Verify  VerifyConfig
	Replay  ReplayConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls signing.
type TokenConfig struct {
	Secret    string `env:"GOTOKEN_SECRET"`
	Algorithm string `env:"GOTOKEN_ALGORITHM"`
	// Lifetimes accept "1day", "1week", "1month" or a number of seconds.
	AccessLifetime  string `env:"GOTOKEN_ACCESS_LIFETIME"`
	RefreshLifetime string `env:"GOTOKEN_REFRESH_LIFETIME"`
	Issuer          string `env:"GOTOKEN_ISSUER"`
	Audience        string `env:"GOTOKEN_AUDIENCE"`
	Encoding        string `env:"GOTOKEN_ENCODING"`   // "std" (default) or "rawurl"
	JTIFormat       string `env:"GOTOKEN_JTI_FORMAT"` // "hex" (default) or "uuid"
	LegacyData      bool   `env:"GOTOKEN_LEGACY_DATA"`
}

/*
====================================
VERIFY CONFIG
====================================
*/

// VerifyConfig controls Engine.Verify.
type VerifyConfig struct {
	Leeway time.Duration `env:"GOTOKEN_LEEWAY"`
	// Empty expectations are not enforced.
	ExpectedIssuer   string `env:"GOTOKEN_EXPECTED_ISSUER"`
	ExpectedAudience string `env:"GOTOKEN_EXPECTED_AUDIENCE"`
}

/*
====================================
REPLAY CONFIG
====================================
*/

// ReplayConfig controls one-time use of jti-bearing tokens.
type ReplayConfig struct {
	Enabled     bool   `env:"GOTOKEN_REPLAY_ENABLED"`
	RedisPrefix string `env:"GOTOKEN_REPLAY_PREFIX"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool `env:"GOTOKEN_AUDIT_ENABLED"`
	BufferSize int  `env:"GOTOKEN_AUDIT_BUFFER"`
	DropIfFull bool `env:"GOTOKEN_AUDIT_DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `env:"GOTOKEN_METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"GOTOKEN_METRICS_LATENCY"`
}

// DefaultConfig returns a Config with every field except the secret filled in.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Algorithm:       string(HS256),
			AccessLifetime:  "7200",
			RefreshLifetime: "86400",
			Encoding:        jwt.EncodingStd.String(),
			JTIFormat:       "hex",
		},
		Verify: VerifyConfig{
			Leeway: 0,
		},
		Replay: ReplayConfig{
			Enabled:     false,
			RedisPrefix: "gtj",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// LoadConfig starts from DefaultConfig, applies GOTOKEN_* environment variables and
// validates the result.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Token.Secret == "" {
		return errors.New("token secret is required")
	}
	if _, err := ParseAlgorithm(c.Token.Algorithm); err != nil {
		return err
	}
	if _, err := ParseLifetime(c.Token.AccessLifetime); err != nil {
		return fmt.Errorf("access lifetime: %w", err)
	}
	if _, err := ParseLifetime(c.Token.RefreshLifetime); err != nil {
		return fmt.Errorf("refresh lifetime: %w", err)
	}
	if _, err := jwt.ParseEncoding(c.Token.Encoding); err != nil {
		return err
	}
	if _, err := ParseIDFormat(c.Token.JTIFormat); err != nil {
		return err
	}
	if c.Verify.Leeway < 0 || c.Verify.Leeway > maxLeeway {
		return fmt.Errorf("leeway must be within [0, %s]", maxLeeway)
	}
	if c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must be >= 0")
	}
	return nil
}

// key builds the signing key from a validated config.
func (c *Config) key() (Key, error) {
	return NewKey(c.Token.Secret, c.Token.Algorithm)
}

// tokenBuilder builds the builder defaults from a validated config.
func (c *Config) tokenBuilder() (TokenBuilder, error) {
	access, err := ParseLifetime(c.Token.AccessLifetime)
	if err != nil {
		return TokenBuilder{}, err
	}
	refresh, err := ParseLifetime(c.Token.RefreshLifetime)
	if err != nil {
		return TokenBuilder{}, err
	}
	enc, err := jwt.ParseEncoding(c.Token.Encoding)
	if err != nil {
		return TokenBuilder{}, err
	}
	ids, err := ParseIDFormat(c.Token.JTIFormat)
	if err != nil {
		return TokenBuilder{}, err
	}

	tb := NewTokenBuilder().
		WithAccessLifetime(access).
		WithRefreshLifetime(refresh).
		WithIssuer(c.Token.Issuer).
		WithAudience(c.Token.Audience).
		WithEncoding(enc).
		WithIDGenerator(ids).
		WithLegacyData(c.Token.LegacyData)
	return tb, tb.Err()
}
