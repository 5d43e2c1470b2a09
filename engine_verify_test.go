package accountd_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thanhldev/accountd"
)

func TestVerifyOTPHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice", "alice@example.com", "hunter2")
	code := env.mailer.last(t).code

	user, err := env.engine.VerifyOTP(ctx, "alice@example.com", code)
	require.NoError(t, err)
	require.True(t, user.IsVerified)

	stored, err := env.store.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, stored.IsVerified)
}

func TestVerifyOTPUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.VerifyOTP(context.Background(), "nobody@example.com", "123456")
	require.ErrorIs(t, err, accountd.ErrNotFound)
}

func TestVerifyOTPMismatchKeepsChallenge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice", "alice@example.com", "hunter2")
	code := env.mailer.last(t).code

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err := env.engine.VerifyOTP(ctx, "alice@example.com", wrong)
	require.ErrorIs(t, err, accountd.ErrOTPMismatch)

	// The right code still works after a failed attempt.
	user, err := env.engine.VerifyOTP(ctx, "alice@example.com", code)
	require.NoError(t, err)
	require.True(t, user.IsVerified)
}

func TestVerifyOTPReplayFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice", "alice@example.com", "hunter2")
	code := env.mailer.last(t).code

	_, err := env.engine.VerifyOTP(ctx, "alice@example.com", code)
	require.NoError(t, err)

	// The code was consumed; a replay sees no pending challenge.
	_, err = env.engine.VerifyOTP(ctx, "alice@example.com", code)
	require.ErrorIs(t, err, accountd.ErrNoPendingOTP)
}

func TestVerifyOTPExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice", "alice@example.com", "hunter2")
	code := env.mailer.last(t).code

	// Push Redis past the challenge TTL.
	env.redis.FastForward(11 * time.Minute)

	_, err := env.engine.VerifyOTP(ctx, "alice@example.com", code)
	require.ErrorIs(t, err, accountd.ErrNoPendingOTP)
}

func TestVerifyOTPReissueInvalidatesOldCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice", "alice@example.com", "hunter2")
	first := env.mailer.last(t).code

	// A reset request reissues the challenge for the same account.
	require.NoError(t, env.engine.ForgotPassword(ctx, "alice@example.com"))
	second := env.mailer.last(t).code

	if first != second {
		_, err := env.engine.VerifyOTP(ctx, "alice@example.com", first)
		require.ErrorIs(t, err, accountd.ErrOTPMismatch)
	}

	user, err := env.engine.VerifyOTP(ctx, "alice@example.com", second)
	require.NoError(t, err)
	require.True(t, user.IsVerified)
}
