package authkit

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/skillswaphq/authkit/blacklist"
	"github.com/skillswaphq/authkit/internal/audit"
	"github.com/skillswaphq/authkit/password"
	"github.com/skillswaphq/authkit/refresh"
	"github.com/skillswaphq/authkit/token"
)

// Builder defines a public type used by authkit APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	directory UserDirectory
	auditSink AuditSink

	store    refresh.Store
	registry blacklist.Registry

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis switches the refresh token store and the revocation registry to
// their Redis-backed implementations.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithDirectory describes the withdirectory operation and its observable behavior.
//
// WithDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithDirectory(d UserDirectory) *Builder {
	b.directory = d
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithRefreshStore overrides the refresh token store implementation chosen
// by Build.
func (b *Builder) WithRefreshStore(store refresh.Store) *Builder {
	b.store = store
	return b
}

// WithBlacklist overrides the revocation registry implementation chosen by
// Build.
func (b *Builder) WithBlacklist(registry blacklist.Registry) *Builder {
	b.registry = registry
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the [Manager]. A missing
// signing secret fails here, before any request is served, never silently
// per request.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.directory == nil {
		return nil, errors.New("user directory required")
	}

	codec, err := token.NewCodec(token.Config{
		AccessSecret:  cloneBytes(cfg.JWT.AccessSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	// -------- REFRESH TOKEN STORE --------
	store := b.store
	if store == nil {
		if b.redis != nil {
			store = refresh.NewRedisStore(b.redis, cfg.Refresh.RedisPrefix)
		} else {
			store = refresh.NewMemoryStore()
		}
	}

	// -------- REVOCATION REGISTRY --------
	registry := b.registry
	if registry == nil {
		if b.redis != nil {
			registry = blacklist.NewRedis(b.redis, cfg.Blacklist.RedisPrefix, codec.ExpiryOf, cfg.Blacklist.FallbackTTL)
		} else {
			registry = blacklist.NewMemory(codec.ExpiryOf, cfg.Blacklist.FallbackTTL)
		}
	}

	manager := &Manager{
		config:    cfg,
		codec:     codec,
		hasher:    hasher,
		store:     store,
		registry:  registry,
		directory: b.directory,
		metrics:   NewMetrics(cfg.Metrics),
		done:      make(chan struct{}),
	}

	manager.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	dummyHash, err := hasher.Hash("authkit.timing-equalizer.4f7c1a")
	if err != nil {
		return nil, err
	}
	manager.dummyHash = dummyHash

	if cfg.Refresh.SweepInterval > 0 {
		manager.wg.Add(1)
		go manager.runSweeper(cfg.Refresh.SweepInterval)
	}

	b.built = true

	return manager, nil
}
