package accountd

import (
	"context"
)

// VerifyOTP consumes the pending one-time code for the account behind
// email and marks the account verified. A correct code works exactly
// once: replaying it fails with [ErrNoPendingOTP]. A wrong code leaves
// the challenge in place so the right one can still follow.
func (e *Engine) VerifyOTP(ctx context.Context, email, code string) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventOTPVerify, false, "", err, nil)
		return nil, err
	}

	if err := mapOTPError(e.otp.Consume(ctx, account.ID, code)); err != nil {
		e.metricInc(MetricOTPFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, account.ID, err, nil)
		return nil, err
	}

	verified := true
	account, err = e.store.Update(ctx, account.ID, AccountPatch{IsVerified: &verified})
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricOTPVerified)
	e.emitAudit(ctx, auditEventOTPVerify, true, account.ID, nil, nil)

	public := account.Public()
	return &public, nil
}
