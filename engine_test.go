package accountd_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/thanhldev/accountd"
	"github.com/thanhldev/accountd/internal/memstore"
	"github.com/thanhldev/accountd/password"
)

// captureMailer records sent codes and can be told to fail.
type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	to       string
	username string
	code     string
}

func (m *captureMailer) SendOTP(ctx context.Context, to, username, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, username: username, code: code})
	return nil
}

func (m *captureMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail was sent")
	return m.sent[len(m.sent)-1]
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	engine *accountd.Engine
	store  *memstore.Store
	mailer *captureMailer
	redis  *miniredis.Miniredis
}

func testConfig() accountd.Config {
	cfg := accountd.DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password = accountd.PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
		MinLength:   5,
	}
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := testConfig()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	require.NoError(t, err)

	store := memstore.New(hasher)
	mailer := &captureMailer{}

	engine, err := accountd.New().
		WithConfig(cfg).
		WithRedis(client).
		WithStore(store).
		WithHasher(hasher).
		WithMailer(mailer).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return &testEnv{engine: engine, store: store, mailer: mailer, redis: mr}
}

// register creates and returns an account, leaving it unverified with a
// pending code in the mailer.
func (env *testEnv) register(t *testing.T, username, email, pw string) *accountd.RegisterResult {
	t.Helper()
	result, err := env.engine.Register(context.Background(), accountd.RegisterRequest{
		Username: username,
		Email:    email,
		Password: pw,
	})
	require.NoError(t, err)
	return result
}

// registerVerified runs the full register-and-verify flow.
func (env *testEnv) registerVerified(t *testing.T, username, email, pw string) *accountd.PublicAccount {
	t.Helper()
	env.register(t, username, email, pw)
	user, err := env.engine.VerifyOTP(context.Background(), email, env.mailer.last(t).code)
	require.NoError(t, err)
	return user
}

func TestBuilderRequiresDependencies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := testConfig()

	_, err := accountd.New().WithConfig(cfg).Build()
	require.Error(t, err)

	_, err = accountd.New().WithConfig(cfg).WithRedis(client).Build()
	require.Error(t, err)

	hasher, err := password.NewArgon2(password.Config{
		Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16,
	})
	require.NoError(t, err)

	engine, err := accountd.New().
		WithConfig(cfg).
		WithRedis(client).
		WithStore(memstore.New(hasher)).
		WithMailer(&captureMailer{}).
		Build()
	require.NoError(t, err)
	engine.Close()
}

func TestBuilderRejectsShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Secret = []byte("short")

	_, err := accountd.New().WithConfig(cfg).Build()
	require.Error(t, err)
}

func TestMetricsSnapshot(t *testing.T) {
	env := newTestEnv(t)

	env.registerVerified(t, "metrics", "metrics@example.com", "hunter2")

	snap := env.engine.MetricsSnapshot()
	require.Equal(t, uint64(1), snap.Counters[accountd.MetricRegisterSuccess])
	require.Equal(t, uint64(1), snap.Counters[accountd.MetricOTPVerified])
}

func TestAuditEventsEmitted(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := testConfig()

	hasher, err := password.NewArgon2(password.Config{
		Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16,
	})
	require.NoError(t, err)

	sink := accountd.NewChannelSink(16)
	mailer := &captureMailer{}

	engine, err := accountd.New().
		WithConfig(cfg).
		WithRedis(client).
		WithStore(memstore.New(hasher)).
		WithHasher(hasher).
		WithMailer(mailer).
		WithAuditSink(sink).
		Build()
	require.NoError(t, err)

	ctx := accountd.WithClientIP(context.Background(), "203.0.113.9")
	_, err = engine.Register(ctx, accountd.RegisterRequest{
		Username: "audited",
		Email:    "audited@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	engine.Close()

	select {
	case event := <-sink.Events():
		require.Equal(t, "register", event.EventType)
		require.True(t, event.Success)
		require.Equal(t, "203.0.113.9", event.IP)
	case <-time.After(time.Second):
		t.Fatal("no audit event received")
	}
}
