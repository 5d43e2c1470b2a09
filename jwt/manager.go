// Package jwt wraps token issuance and verification for accountd. Tokens
// are HS256-signed with a single process-wide secret loaded at startup;
// anything signed with another key, another algorithm, or past its expiry
// fails Parse.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned by Parse for a structurally valid token whose
	// expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned by Parse for every other verification failure:
	// bad signature, wrong algorithm, malformed claims.
	ErrInvalid = errors.New("invalid token")
)

// Config holds the issuer settings. Secret is required and must be at
// least 32 bytes.
type Config struct {
	Secret []byte
	// RegistrationTTL bounds tokens issued at account creation time.
	RegistrationTTL time.Duration
	// AccessTTL bounds tokens issued at login.
	AccessTTL time.Duration
	Issuer    string
	Leeway    time.Duration
}

// Claims is the identity payload embedded in signed tokens. Registration
// tokens carry only UID; access tokens additionally carry email and
// username for the convenience of downstream handlers.
type Claims struct {
	UID      string `json:"uid"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("hs256 secret must be at least 32 bytes")
	}
	if cfg.RegistrationTTL <= 0 || cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// CreateRegistration issues the token handed out at account creation,
// before OTP verification completes. It identifies the account and
// nothing else.
func (m *Manager) CreateRegistration(uid string) (string, error) {
	return m.sign(Claims{UID: uid}, m.config.RegistrationTTL)
}

// CreateAccess issues the login token.
func (m *Manager) CreateAccess(uid, email, username string) (string, error) {
	return m.sign(Claims{UID: uid, Email: email, Username: username}, m.config.AccessTTL)
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    m.config.Issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies the signature, algorithm, issuer, and expiry of a token
// and returns its claims.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}
