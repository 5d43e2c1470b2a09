package accountd

import (
	"context"
	"errors"
)

// Login authenticates by email and password and issues an access token.
// Unknown email and wrong password both come back as
// [ErrInvalidCredentials] so the response never confirms whether an
// address is registered. An unverified account is refused with
// [ErrNotVerified] before the password is even checked.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLogin, false, "", ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.IsVerified {
		e.metricInc(MetricLoginUnverified)
		e.emitAudit(ctx, auditEventLogin, false, account.ID, ErrNotVerified, nil)
		return nil, ErrNotVerified
	}

	ok, err := e.hasher.Verify(plaintext, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, account.ID, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	token, err := e.tokens.CreateAccess(account.ID, account.Email, account.Username)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, true, account.ID, nil, nil)

	return &LoginResult{Profile: account.Public(), AccessToken: token}, nil
}
