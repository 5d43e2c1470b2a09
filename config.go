package accountd

import (
	"errors"
	"time"
)

// Config groups the engine's tunables. Zero values are filled with
// defaults by [Builder]; Validate runs during Build.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	OTP      OTPConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// JWTConfig configures the token issuer. Secret is the process-wide HMAC
// key loaded once at startup; tokens signed with any other key fail
// verification.
type JWTConfig struct {
	Secret []byte
	// RegistrationTTL bounds the token issued at account creation, before
	// OTP verification.
	RegistrationTTL time.Duration
	// AccessTTL bounds the login token.
	AccessTTL time.Duration
	Issuer    string
	Leeway    time.Duration
}

// PasswordConfig holds the argon2id parameters plus the minimum accepted
// plaintext length.
type PasswordConfig struct {
	Memory      uint32 // KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// OTPConfig configures the challenge store.
type OTPConfig struct {
	// TTL is the challenge lifetime. Comparison is strict: a code is
	// rejected the instant expiry has passed.
	TTL         time.Duration
	RedisPrefix string
}

// AccountConfig holds account-policy settings.
type AccountConfig struct {
	DefaultRole Role
	// MinUsernameLength guards registration and profile updates.
	MinUsernameLength int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration. The JWT secret is
// left empty and must be set before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			RegistrationTTL: 24 * time.Hour,
			AccessTTL:       time.Hour,
			Issuer:          "accountd",
			Leeway:          30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   5,
		},
		OTP: OTPConfig{
			TTL:         10 * time.Minute,
			RedisPrefix: "aotp",
		},
		Account: AccountConfig{
			DefaultRole:       RoleUser,
			MinUsernameLength: 3,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 bytes")
	}
	if c.JWT.RegistrationTTL <= 0 || c.JWT.AccessTTL <= 0 {
		return errors.New("jwt TTLs must be positive")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("jwt leeway out of range")
	}
	if c.OTP.TTL <= 0 {
		return errors.New("otp TTL must be positive")
	}
	if c.Password.MinLength < 1 {
		return errors.New("password min length must be at least 1")
	}
	if !c.Account.DefaultRole.Valid() {
		return errors.New("unknown default role")
	}
	if c.Account.MinUsernameLength < 1 {
		return errors.New("username min length must be at least 1")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	return out
}
