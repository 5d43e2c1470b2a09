package accountd

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	internalaudit "github.com/thanhldev/accountd/internal/audit"
	"github.com/thanhldev/accountd/internal/otp"
	"github.com/thanhldev/accountd/jwt"
)

// Engine orchestrates the account lifecycle over the injected Store, OTP
// challenge store, Mailer, and token manager. Build one through [Builder];
// the zero value is not usable.
type Engine struct {
	config  Config
	store   Store
	hasher  Hasher
	otp     *otp.Store
	mailer  Mailer
	avatars AvatarStore
	tokens  *jwt.Manager
	audit   *internalaudit.Dispatcher
	metrics *Metrics
	now     func() time.Time
}

// Close flushes and stops the audit dispatcher. Safe on a nil receiver.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.hasher != nil && e.otp != nil &&
		e.mailer != nil && e.tokens != nil
}

// Matches the address shape only: something@something.tld. Anything
// stricter belongs to the delivery layer, which finds out for real.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func (e *Engine) validateUsername(username string) error {
	if len(username) < e.config.Account.MinUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters",
			ErrValidation, e.config.Account.MinUsernameLength)
	}
	return nil
}

func (e *Engine) validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: malformed email address", ErrValidation)
	}
	return nil
}

func (e *Engine) validatePassword(plaintext string) error {
	if len(plaintext) < e.config.Password.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrValidation, e.config.Password.MinLength)
	}
	return nil
}

// mapOTPError translates challenge-store errors into the engine taxonomy.
func mapOTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, otp.ErrNoPending):
		return ErrNoPendingOTP
	case errors.Is(err, otp.ErrMismatch):
		return ErrOTPMismatch
	case errors.Is(err, otp.ErrExpired):
		return ErrOTPExpired
	default:
		return err
	}
}
