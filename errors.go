package accountd

import "errors"

var (
	// ErrValidation is returned when a submitted field fails format or
	// length validation before any side effect occurs.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail is returned when the email is already taken.
	ErrDuplicateEmail = errors.New("email already taken")
	// ErrNotFound is returned when no account matches the given identifier.
	ErrNotFound = errors.New("account not found")
	// ErrInvalidCredentials is returned on login for both an unknown email
	// and a wrong password, so the response never reveals whether the
	// account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified is returned when an account attempts to log in before
	// completing OTP verification.
	ErrNotVerified = errors.New("account not verified")
	// ErrNoPendingOTP is returned when no challenge is outstanding for the
	// account. Distinct from ErrOTPMismatch.
	ErrNoPendingOTP = errors.New("no pending otp challenge")
	// ErrOTPMismatch is returned when the submitted code does not match the
	// most recently issued one.
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrOTPExpired is returned when the challenge exists but its expiry has
	// passed.
	ErrOTPExpired = errors.New("otp expired")
	// ErrDelivery is returned when the OTP email could not be sent. On the
	// registration path the just-created account is removed first.
	ErrDelivery = errors.New("otp delivery failed")
	// ErrUnauthenticated is returned when a request carries no usable
	// identity: missing, malformed, expired token, or an account that no
	// longer exists.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the resolved account's role is not in
	// the allowed set for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrRoleInvalid is returned when an administrative operation names an
	// unknown role.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrAvatarsDisabled is returned when avatar upload is attempted but no
	// object store was configured.
	ErrAvatarsDisabled = errors.New("avatar storage not configured")
	// ErrEngineNotReady is returned when a method is called on an Engine
	// that was not built through Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)
