package goToken

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/jwt"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. Configure it during initialization, call Build once, and
// discard it.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	replay ReplayGuard

	auditSink AuditSink
	logger    *slog.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder holding DefaultConfig. A secret must be supplied through
// WithConfig before Build succeeds.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the client backing the replay guard when Replay.Enabled is set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithReplayGuard installs a custom guard and enables replay protection. It takes
// precedence over WithRedis.
func (b *Builder) WithReplayGuard(guard ReplayGuard) *Builder {
	b.replay = guard
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. A nil logger discards output.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now for both issuing and verifying.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine. A Builder can be built
// only once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	guard := b.replay
	if guard == nil && cfg.Replay.Enabled {
		if b.redis == nil {
			return nil, fmt.Errorf("%w: replay protection requires a redis client or a ReplayGuard", ErrInvalidConfig)
		}
		guard = NewRedisReplayGuard(b.redis, cfg.Replay.RedisPrefix)
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	key, err := cfg.key()
	if err != nil {
		return nil, err
	}
	tokens, err := cfg.tokenBuilder()
	if err != nil {
		return nil, err
	}
	tokens = tokens.WithClock(now)

	enc, err := jwt.ParseEncoding(cfg.Token.Encoding)
	if err != nil {
		return nil, err
	}
	verifier, err := NewVerifier(key,
		WithLeeway(cfg.Verify.Leeway),
		WithExpectedIssuer(cfg.Verify.ExpectedIssuer),
		WithExpectedAudience(cfg.Verify.ExpectedAudience),
		WithVerifyClock(now),
		WithReplayGuard(guard),
		WithSegmentEncoding(enc),
	)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := &Engine{
		key:      key,
		tokens:   tokens,
		verifier: verifier,
		replay:   guard != nil,
		metrics:  NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		logger: logger,
		now:    now,
	}

	b.built = true

	return engine, nil
}
