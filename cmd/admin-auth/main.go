// File: cmd/admin-auth/main.go
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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/inkwell-cms/admin-auth/internal/config"
	"github.com/inkwell-cms/admin-auth/internal/events/kafka"
	httpHandler "github.com/inkwell-cms/admin-auth/internal/handler/http"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/database"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/database/postgres"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/mail"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/session"
	"github.com/inkwell-cms/admin-auth/internal/service"
	"github.com/inkwell-cms/admin-auth/internal/utils/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if cfg.Database.AutoMigrate {
		log.Info("Running database migrations")
		migrationURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, cfg.Database.SSLMode)
		m, err := migrate.New("file://migrations", migrationURL)
		if err != nil {
			log.Fatal("Failed to create migration instance", zap.Error(err))
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		log.Info("Migrations applied successfully")
	}

	dbPool, err := postgres.NewDBPool(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize PostgreSQL connection pool", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient, err := session.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	var events kafka.Publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer producer.Close()
		events = producer
	}

	userRepo := database.NewPgxUserRepository(dbPool)
	emailCodeRepo := database.NewPgxEmailCodeRepository(dbPool)
	deviceRepo := database.NewPgxTrustedDeviceRepository(dbPool)
	attemptRepo := database.NewPgxLoginAttemptRepository(dbPool)

	passwordService, err := security.NewArgon2idPasswordService(cfg.Security.PasswordHash)
	if err != nil {
		log.Fatal("Failed to initialize password service", zap.Error(err))
	}
	encrypter, err := security.NewEncrypter(cfg.Auth.TOTPSecretEncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize secret encrypter", zap.Error(err))
	}
	sessionTokens, err := security.NewSessionTokenService(cfg.Auth.SessionTokenSecret, cfg.Auth.SessionTokenTTL)
	if err != nil {
		log.Fatal("Failed to initialize session token service", zap.Error(err))
	}

	challengeStore := session.NewRedisChallengeStore(redisClient)
	mailer := mail.NewSMTPMailer(cfg.SMTP, log)

	emailCodeService := service.NewEmailCodeService(emailCodeRepo, logger.WithComponent(log, "email_codes"))
	deviceService := service.NewTrustedDeviceService(deviceRepo, events, logger.WithComponent(log, "trusted_devices"))
	secondFactorService := service.NewSecondFactorService(userRepo, emailCodeService, mailer, encrypter, logger.WithComponent(log, "second_factor"))
	loginService := service.NewLoginService(
		userRepo, attemptRepo, passwordService, deviceService, secondFactorService,
		challengeStore, sessionTokens, events, cfg.Auth, logger.WithComponent(log, "login"),
	)
	setupService := service.NewSetupService(
		userRepo, attemptRepo, secondFactorService, deviceService,
		challengeStore, sessionTokens, encrypter, events, cfg.Auth, logger.WithComponent(log, "setup"),
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runEmailCodeSweep(sweepCtx, emailCodeService, cfg.Auth.EmailCodeSweepInterval, logger.WithComponent(log, "email_code_sweep"))

	router := httpHandler.SetupRouter(loginService, setupService, deviceService, sessionTokens, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// runEmailCodeSweep periodically purges expired one-time codes until the
// context is cancelled.
func runEmailCodeSweep(ctx context.Context, codes *service.EmailCodeService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := codes.PurgeExpired(ctx, time.Now().UTC()); err != nil {
				log.Error("Failed to purge expired email codes", zap.Error(err))
			}
		}
	}
}
