// Command accountd runs the account service: HTTP API on gin, accounts
// in PostgreSQL, OTP challenges in Redis, avatars in an S3-compatible
// bucket, verification codes over SMTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/thanhldev/accountd"
	"github.com/thanhldev/accountd/httpapi"
	"github.com/thanhldev/accountd/internal/avatars"
	"github.com/thanhldev/accountd/internal/logging"
	"github.com/thanhldev/accountd/internal/mailer"
	"github.com/thanhldev/accountd/internal/obs"
	"github.com/thanhldev/accountd/internal/postgres"
	otelexport "github.com/thanhldev/accountd/metrics/export/otel"
	"github.com/thanhldev/accountd/password"
)

type appConfig struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	SMTPHost     string `envconfig:"SMTP_HOST" required:"true"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" required:"true"`

	S3Region        string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint      string `envconfig:"S3_ENDPOINT"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3AccessKey     string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string `envconfig:"S3_SECRET_KEY"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
	S3PathStyle     bool   `envconfig:"S3_PATH_STYLE" default:"true"`

	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`
}

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Optional local override file; missing is fine.
	_ = godotenv.Load()

	var cfg appConfig
	if err := envconfig.Process("ACCOUNTD", &cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		tracerShutdown, err := obs.InitTracer(ctx, "accountd", version, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerShutdown(shutdownCtx); err != nil {
				log.Error("tracer shutdown", "error", err)
			}
		}()

		meterShutdown, err := obs.InitMeter(ctx, "accountd", version, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterShutdown(shutdownCtx); err != nil {
				log.Error("meter shutdown", "error", err)
			}
		}()
	}

	engineCfg := buildEngineConfig(cfg)

	hasher, err := password.NewArgon2(password.Config{
		Memory:      engineCfg.Password.Memory,
		Time:        engineCfg.Password.Time,
		Parallelism: engineCfg.Password.Parallelism,
		SaltLength:  engineCfg.Password.SaltLength,
		KeyLength:   engineCfg.Password.KeyLength,
	})
	if err != nil {
		return err
	}

	store, err := postgres.Open(ctx, cfg.DatabaseDSN, hasher)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("database ready")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	smtp, err := mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		return err
	}

	builder := accountd.New().
		WithConfig(engineCfg).
		WithStore(store).
		WithHasher(hasher).
		WithRedis(redisClient).
		WithMailer(smtp).
		WithAuditSink(accountd.NewJSONWriterSink(os.Stdout))

	if cfg.S3Bucket != "" {
		avatarStore, err := avatars.NewS3Store(ctx, avatars.Config{
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3PathStyle,
		})
		if err != nil {
			return err
		}
		builder = builder.WithAvatarStore(avatarStore)
	} else {
		log.Warn("avatar storage disabled, no bucket configured")
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if cfg.OTLPEndpoint != "" {
		exporter, err := otelexport.NewOTelExporter(otel.Meter("accountd"), engine)
		if err != nil {
			return fmt.Errorf("metrics exporter: %w", err)
		}
		defer exporter.Close()
	}

	if cfg.AdminEmail != "" {
		admin, err := engine.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Info("admin account ready", "id", admin.ID)
	}

	api := httpapi.New(engine, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	return nil
}

func buildEngineConfig(cfg appConfig) accountd.Config {
	engineCfg := accountd.DefaultConfig()
	engineCfg.JWT.Secret = []byte(cfg.JWTSecret)
	return engineCfg
}
