package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-security-core/internal/actions"
	apikeyrepo "account-security-core/internal/apikey/repository"
	apikeyservice "account-security-core/internal/apikey/service"
	"account-security-core/internal/audit"
	auditrepo "account-security-core/internal/audit/repository"
	"account-security-core/internal/audit/stream"
	"account-security-core/internal/config"
	"account-security-core/internal/db"
	"account-security-core/internal/security"
	"account-security-core/internal/server/httpapi"
	sessionrepo "account-security-core/internal/session/repository"
	sessionservice "account-security-core/internal/session/service"
	"account-security-core/internal/telemetry/otel"
	twofactorrepo "account-security-core/internal/twofactor/repository"
	twofactorservice "account-security-core/internal/twofactor/service"
	userrepo "account-security-core/internal/user/repository"
)

const serviceName = "account-security-core"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		logger.Error("telemetry setup", "error", err)
		os.Exit(1)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown", "error", err)
		}
	}()

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database open", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	users := userrepo.NewPostgresRepository(pool)
	sessions := sessionrepo.NewPostgresRepository(pool)
	methods := twofactorrepo.NewPostgresRepository(pool)
	keys := apikeyrepo.NewPostgresRepository(pool)
	audits := auditrepo.NewPostgresRepository(pool)

	mirror := stream.NewKafkaMirror(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic, logger)
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Error("audit mirror close", "error", err)
		}
	}()

	hasher := security.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	reset := security.NewResetTokenSigner(cfg.ResetTokenSecret, serviceName, cfg.ResetLifetime())

	app := actions.New(
		users,
		sessionservice.NewSessionService(sessions, cfg.SessionLifetime()),
		twofactorservice.NewTwoFactorService(methods, cfg.TOTPIssuer),
		apikeyservice.NewAPIKeyService(keys, logger),
		hasher,
		reset,
		audit.NewLogger(audits, mirror, logger),
		logger,
	)

	handler := httpapi.NewHandler(app, pool, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("serve", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("http server stopped")
}
