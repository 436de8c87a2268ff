package betterauth

import (
	"errors"
	"time"

	internalaudit "github.com/AlexeyZoz/better-auth/internal/audit"
	internalmetrics "github.com/AlexeyZoz/better-auth/internal/metrics"
	"github.com/AlexeyZoz/better-auth/password"
	"github.com/AlexeyZoz/better-auth/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Configure it during initialization, call
// Build once, and discard it.
type Builder struct {
	config Config
	redis  *redis.Client

	users         UserStore
	accounts      AccountStore
	verifications VerificationStore
	passwordHash  PasswordHasher
	sessions      SessionService
	sessionConfig *session.Config
	auditSink     AuditSink

	built bool
}

// New returns a builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client backing the default verification store and
// session service. Not needed when both are injected explicitly.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithUserStore(s UserStore) *Builder {
	b.users = s
	return b
}

func (b *Builder) WithAccountStore(s AccountStore) *Builder {
	b.accounts = s
	return b
}

// WithVerificationStore overrides the default redis-backed store.
func (b *Builder) WithVerificationStore(s VerificationStore) *Builder {
	b.verifications = s
	return b
}

// WithPasswordHasher overrides the default Argon2id hasher.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.passwordHash = h
	return b
}

// WithSessionService overrides the default redis+JWT session service.
func (b *Builder) WithSessionService(s SessionService) *Builder {
	b.sessions = s
	return b
}

// WithSessionConfig configures the default session service. Ignored when a
// custom [SessionService] is injected.
func (b *Builder) WithSessionConfig(cfg session.Config) *Builder {
	b.sessionConfig = &cfg
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires defaults for any collaborator
// not injected explicitly, and returns the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.accounts == nil {
		return nil, errors.New("account store required")
	}

	verifications := b.verifications
	if verifications == nil {
		if b.redis == nil {
			return nil, errors.New("redis client required for default verification store")
		}
		verifications = NewVerificationStore(b.redis, "", cfg.OTP.Retention)
	}

	passwordHash := b.passwordHash
	if passwordHash == nil {
		ph, err := password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
		passwordHash = ph
	}

	sessions := b.sessions
	if sessions == nil {
		if b.sessionConfig == nil {
			return nil, errors.New("session service or session config required")
		}
		if b.redis == nil {
			return nil, errors.New("redis client required for default session service")
		}
		svc, err := session.NewService(b.redis, *b.sessionConfig)
		if err != nil {
			return nil, err
		}
		sessions = svc
	}

	engine := &Engine{
		config:        cfg,
		users:         b.users,
		accounts:      b.accounts,
		verifications: verifications,
		passwordHash:  passwordHash,
		sessions:      sessions,
		metrics: internalmetrics.New(internalmetrics.Config{
			Enabled: cfg.Metrics.Enabled,
		}),
		now: time.Now,
	}

	if cfg.Audit.Enabled {
		engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	b.built = true
	return engine, nil
}
