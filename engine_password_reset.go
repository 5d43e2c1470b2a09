package accountd

import (
	"context"
	"fmt"
)

// ForgotPassword issues a reset code for the account behind email and
// mails it. Unlike login this path reports an unknown address as
// [ErrNotFound]: the caller asked to reset a specific account and a
// generic success would only strand them.
//
// Issuing replaces any pending challenge, so a reset code also
// supersedes an outstanding registration code.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	account, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventForgotPassword, false, "", err, nil)
		return err
	}

	code, err := e.otp.Issue(ctx, account.ID)
	if err != nil {
		e.emitAudit(ctx, auditEventForgotPassword, false, account.ID, err, nil)
		return err
	}
	e.metricInc(MetricOTPIssued)

	if err := e.mailer.SendOTP(ctx, account.Email, account.Username, code); err != nil {
		_ = e.otp.Clear(ctx, account.ID)
		e.emitAudit(ctx, auditEventForgotPassword, false, account.ID, err, nil)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	e.metricInc(MetricResetRequest)
	e.emitAudit(ctx, auditEventForgotPassword, true, account.ID, nil, nil)

	return nil
}

// ResetPassword consumes the pending reset code and replaces the
// account's password. Verification status is untouched: an account may
// reset its password without ever having completed OTP verification,
// and still cannot log in until it does.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	if err := e.validatePassword(newPassword); err != nil {
		return err
	}

	account, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventResetPassword, false, "", err, nil)
		return err
	}

	if err := mapOTPError(e.otp.Consume(ctx, account.ID, code)); err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventResetPassword, false, account.ID, err, nil)
		return err
	}

	if err := e.store.SetPassword(ctx, account.ID, newPassword); err != nil {
		return err
	}

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, auditEventResetPassword, true, account.ID, nil, nil)

	return nil
}
