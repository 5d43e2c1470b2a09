package accountd

import (
	"context"
	"io"
	"time"
)

// Role is the coarse permission tier of an account. It governs
// authorization decisions only, never authentication.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "user"
	// RoleAdmin grants access to the user-management operations.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the full persisted record. PasswordHash is an argon2id PHC
// string set exclusively by the store's write paths; plaintext never
// reaches a persisted field.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	AvatarURL    string
	IsVerified   bool
	// RefreshToken is persisted for session renewal but unused by the
	// current flows.
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the client-safe view of the account. Password hash,
// refresh token, and any pending challenge state are stripped.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		Role:       a.Role,
		AvatarURL:  a.AvatarURL,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
	}
}

// PublicAccount is the sanitized account representation returned to
// clients and attached to authenticated requests.
type PublicAccount struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	AvatarURL  string    `json:"avatarUrl,omitempty"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewAccount is the input to [Store.Create]. Password is plaintext; the
// store hashes it before writing.
type NewAccount struct {
	Username   string
	Email      string
	Password   string
	Role       Role
	IsVerified bool
}

// AccountPatch is a partial update applied by [Store.Update]. Nil fields
// are left untouched.
type AccountPatch struct {
	Username     *string
	Email        *string
	Role         *Role
	AvatarURL    *string
	IsVerified   *bool
	RefreshToken *string
}

// Store persists account records. Implementations must enforce
// username/email uniqueness at write time (unique indexes, not
// read-then-write) and must hash passwords on every write path that sets
// one: Create and SetPassword both accept plaintext and never store it.
//
// Lookups return [ErrNotFound] when no record matches; Create and Update
// return [ErrDuplicateUsername] or [ErrDuplicateEmail] on a uniqueness
// violation, before any other side effect.
type Store interface {
	Create(ctx context.Context, in NewAccount) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, id string, patch AccountPatch) (*Account, error)
	// SetPassword re-hashes and stores the new password. Registration and
	// reset are the only callers.
	SetPassword(ctx context.Context, id string, plaintext string) error
	List(ctx context.Context) ([]Account, error)
	// Delete removes the record permanently. The administrative "delete"
	// is a soft disable via Update; this is the self-service path.
	Delete(ctx context.Context, id string) error
}

// Hasher derives and checks one-way salted password hashes. Satisfied by
// [password.Argon2].
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encodedHash string) (bool, error)
}

// Mailer delivers a one-time code to an address. Delivery is awaited
// synchronously; an error fails the surrounding operation so an account
// never appears created or reset-pending without a reachable code.
type Mailer interface {
	SendOTP(ctx context.Context, to, username, code string) error
}

// AvatarStore stores a binary asset and returns a publicly reachable URL.
type AvatarStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// RegisterRequest is the input to [Engine.Register].
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// RegisterResult is returned by [Engine.Register]. Token is a short-lived
// registration token carrying the account id only, issued before OTP
// verification completes so the client can hold a session while verifying.
type RegisterResult struct {
	User  PublicAccount
	Token string
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	Profile     PublicAccount
	AccessToken string
}

// Identity is the resolved caller attached to authenticated requests by
// the access gate.
type Identity struct {
	Account PublicAccount
}

// AdminCreateRequest is the administrative account-creation input. Role
// defaults to [RoleUser]; Verified allows seeding pre-verified accounts.
type AdminCreateRequest struct {
	Username string
	Email    string
	Password string
	Role     Role
	Verified bool
}

// AdminUpdateRequest is the administrative partial update. Nil fields are
// left untouched.
type AdminUpdateRequest struct {
	Username   *string
	Email      *string
	Role       *Role
	IsVerified *bool
}

// ProfileUpdateRequest is the self-service partial update.
type ProfileUpdateRequest struct {
	Username *string
	Email    *string
}
