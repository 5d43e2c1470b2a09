package accountd

import (
	"errors"
	"time"

	internalaudit "github.com/thanhldev/accountd/internal/audit"
	"github.com/thanhldev/accountd/internal/otp"
	"github.com/thanhldev/accountd/jwt"
	"github.com/thanhldev/accountd/password"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store     Store
	hasher    Hasher
	mailer    Mailer
	avatars   AvatarStore
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration. Missing TTLs and policy
// fields are filled with defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the OTP challenge store. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore sets the credential store. Required.
func (b *Builder) WithStore(s Store) *Builder {
	b.store = s
	return b
}

// WithHasher sets the password hasher. When omitted, Build constructs an
// argon2id hasher from Config.Password. Pass the same instance the store
// uses so login verification and write-time hashing share parameters.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithMailer sets the OTP delivery capability. Required.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAvatarStore sets the object store for avatar uploads. Optional;
// without it UploadAvatar fails [ErrAvatarsDisabled].
func (b *Builder) WithAvatarStore(s AvatarStore) *Builder {
	b.avatars = s
	return b
}

// WithAuditSink sets the destination for audit events. Optional; without
// it events are dropped.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and wires the Engine. A Builder can
// be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	applyConfigDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.store == nil {
		return nil, errors.New("credential store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	hasher := b.hasher
	if hasher == nil {
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
		hasher = ph
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:          cfg.JWT.Secret,
		RegistrationTTL: cfg.JWT.RegistrationTTL,
		AccessTTL:       cfg.JWT.AccessTTL,
		Issuer:          cfg.JWT.Issuer,
		Leeway:          cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		store:   b.store,
		hasher:  hasher,
		otp:     otp.NewStore(b.redis, cfg.OTP.RedisPrefix, cfg.OTP.TTL),
		mailer:  b.mailer,
		avatars: b.avatars,
		tokens:  tokens,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		now:     time.Now,
	}

	b.built = true

	return engine, nil
}

func applyConfigDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.JWT.RegistrationTTL == 0 {
		cfg.JWT.RegistrationTTL = def.JWT.RegistrationTTL
	}
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = def.JWT.Issuer
	}
	if cfg.Password.Memory == 0 {
		cfg.Password.Memory = def.Password.Memory
	}
	if cfg.Password.Time == 0 {
		cfg.Password.Time = def.Password.Time
	}
	if cfg.Password.Parallelism == 0 {
		cfg.Password.Parallelism = def.Password.Parallelism
	}
	if cfg.Password.SaltLength == 0 {
		cfg.Password.SaltLength = def.Password.SaltLength
	}
	if cfg.Password.KeyLength == 0 {
		cfg.Password.KeyLength = def.Password.KeyLength
	}
	if cfg.Password.MinLength == 0 {
		cfg.Password.MinLength = def.Password.MinLength
	}
	if cfg.OTP.TTL == 0 {
		cfg.OTP.TTL = def.OTP.TTL
	}
	if cfg.OTP.RedisPrefix == "" {
		cfg.OTP.RedisPrefix = def.OTP.RedisPrefix
	}
	if cfg.Account.DefaultRole == "" {
		cfg.Account.DefaultRole = def.Account.DefaultRole
	}
	if cfg.Account.MinUsernameLength == 0 {
		cfg.Account.MinUsernameLength = def.Account.MinUsernameLength
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
}
