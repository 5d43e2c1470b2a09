package accountd_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thanhldev/accountd"
)

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@example.com", "hunter2")

	require.NoError(t, env.engine.ForgotPassword(ctx, "alice@example.com"))
	code := env.mailer.last(t).code

	require.NoError(t, env.engine.ResetPassword(ctx, "alice@example.com", code, "new-secret"))

	// Old password no longer works, new one does.
	_, err := env.engine.Login(ctx, "alice@example.com", "hunter2")
	require.ErrorIs(t, err, accountd.ErrInvalidCredentials)

	_, err = env.engine.Login(ctx, "alice@example.com", "new-secret")
	require.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.ForgotPassword(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, accountd.ErrNotFound)
}

func TestForgotPasswordDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@example.com", "hunter2")

	env.mailer.fail = true
	err := env.engine.ForgotPassword(ctx, "alice@example.com")
	require.ErrorIs(t, err, accountd.ErrDelivery)
	env.mailer.fail = false

	// The undeliverable challenge was cleared.
	err = env.engine.ResetPassword(ctx, "alice@example.com", "123456", "new-secret")
	require.ErrorIs(t, err, accountd.ErrNoPendingOTP)
}

func TestResetPasswordWrongCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@example.com", "hunter2")
	require.NoError(t, env.engine.ForgotPassword(ctx, "alice@example.com"))
	code := env.mailer.last(t).code

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	err := env.engine.ResetPassword(ctx, "alice@example.com", wrong, "new-secret")
	require.ErrorIs(t, err, accountd.ErrOTPMismatch)

	// Password unchanged after the failed attempt.
	_, err = env.engine.Login(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
}

func TestResetPasswordValidatesNewPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@example.com", "hunter2")
	require.NoError(t, env.engine.ForgotPassword(ctx, "alice@example.com"))
	code := env.mailer.last(t).code

	err := env.engine.ResetPassword(ctx, "alice@example.com", code, "1234")
	require.ErrorIs(t, err, accountd.ErrValidation)

	// Validation fails before the code is consumed, so the same code
	// still works with an acceptable password.
	require.NoError(t, env.engine.ResetPassword(ctx, "alice@example.com", code, "new-secret"))
}

func TestResetPasswordWithoutVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// An unverified account can still reset its password, but remains
	// unable to log in until verified.
	env.register(t, "alice", "alice@example.com", "hunter2")

	require.NoError(t, env.engine.ForgotPassword(ctx, "alice@example.com"))
	code := env.mailer.last(t).code
	require.NoError(t, env.engine.ResetPassword(ctx, "alice@example.com", code, "new-secret"))

	_, err := env.engine.Login(ctx, "alice@example.com", "new-secret")
	require.ErrorIs(t, err, accountd.ErrNotVerified)
}
