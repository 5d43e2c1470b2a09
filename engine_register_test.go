package accountd_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thanhldev/accountd"
)

func TestRegisterHappyPath(t *testing.T) {
	env := newTestEnv(t)

	result := env.register(t, "alice", "alice@example.com", "hunter2")

	require.NotEmpty(t, result.User.ID)
	require.Equal(t, "alice", result.User.Username)
	require.Equal(t, accountd.RoleUser, result.User.Role)
	require.False(t, result.User.IsVerified)
	require.NotEmpty(t, result.Token)

	mail := env.mailer.last(t)
	require.Equal(t, "alice@example.com", mail.to)
	require.Len(t, mail.code, 6)

	// Password is stored hashed, never plaintext.
	stored, err := env.store.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", stored.PasswordHash)
	require.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  accountd.RegisterRequest
	}{
		{"short username", accountd.RegisterRequest{Username: "ab", Email: "a@b.co", Password: "hunter2"}},
		{"malformed email", accountd.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "hunter2"}},
		{"short password", accountd.RegisterRequest{Username: "alice", Email: "a@b.co", Password: "1234"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.engine.Register(ctx, tc.req)
			require.ErrorIs(t, err, accountd.ErrValidation)
		})
	}

	// Nothing was created, nothing was mailed.
	require.Zero(t, env.mailer.count())
}

func TestRegisterDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice", "alice@example.com", "hunter2")

	_, err := env.engine.Register(ctx, accountd.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "hunter2",
	})
	require.ErrorIs(t, err, accountd.ErrDuplicateUsername)

	_, err = env.engine.Register(ctx, accountd.RegisterRequest{
		Username: "bob", Email: "alice@example.com", Password: "hunter2",
	})
	require.ErrorIs(t, err, accountd.ErrDuplicateEmail)

	// Only the first registration produced mail.
	require.Equal(t, 1, env.mailer.count())
}

func TestRegisterDeliveryFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mailer.fail = true

	_, err := env.engine.Register(ctx, accountd.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter2",
	})
	require.ErrorIs(t, err, accountd.ErrDelivery)

	// The half-created account is gone; the address can register again.
	_, err = env.store.GetByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, accountd.ErrNotFound)

	env.mailer.fail = false
	env.register(t, "alice", "alice@example.com", "hunter2")

	snap := env.engine.MetricsSnapshot()
	require.Equal(t, uint64(1), snap.Counters[accountd.MetricRegisterDeliveryFailure])
	require.Equal(t, uint64(1), snap.Counters[accountd.MetricRegisterSuccess])
}
