package accountd

import (
	"context"
	"errors"
	"fmt"
)

// Register creates an unverified account, issues a one-time code, and
// mails it to the new address. The returned token is a short-lived
// registration token; it proves account ownership to the client but the
// account cannot log in until the code is verified.
//
// Delivery is part of the transaction: if the mail cannot be sent the
// account is removed again and [ErrDelivery] is returned, so a failed
// registration leaves no half-created record behind.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if err := e.validateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := e.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := e.validatePassword(req.Password); err != nil {
		return nil, err
	}

	// Cheap pre-checks so the common duplicate case produces a precise
	// error without a failed insert. The store's unique indexes remain
	// the authority under races.
	if _, err := e.store.GetByUsername(ctx, req.Username); err == nil {
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegister, false, "", ErrDuplicateUsername, nil)
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := e.store.GetByEmail(ctx, req.Email); err == nil {
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegister, false, "", ErrDuplicateEmail, nil)
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	account, err := e.store.Create(ctx, NewAccount{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     e.config.Account.DefaultRole,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			e.metricInc(MetricRegisterDuplicate)
		}
		e.emitAudit(ctx, auditEventRegister, false, "", err, nil)
		return nil, err
	}

	code, err := e.otp.Issue(ctx, account.ID)
	if err != nil {
		e.rollbackRegistration(ctx, account.ID)
		e.emitAudit(ctx, auditEventRegister, false, account.ID, err, nil)
		return nil, err
	}
	e.metricInc(MetricOTPIssued)

	if err := e.mailer.SendOTP(ctx, account.Email, account.Username, code); err != nil {
		e.rollbackRegistration(ctx, account.ID)
		e.metricInc(MetricRegisterDeliveryFailure)
		e.emitAudit(ctx, auditEventRegister, false, account.ID, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	token, err := e.tokens.CreateRegistration(account.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, true, account.ID, nil, func() map[string]string {
		return map[string]string{"username": account.Username}
	})

	return &RegisterResult{User: account.Public(), Token: token}, nil
}

// rollbackRegistration undoes a creation whose follow-up steps failed.
// Best effort: the account is unverified either way, so a leftover
// record cannot log in.
func (e *Engine) rollbackRegistration(ctx context.Context, accountID string) {
	_ = e.otp.Clear(ctx, accountID)
	_ = e.store.Delete(ctx, accountID)
}
