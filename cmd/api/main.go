package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/health-records-service/internal/api/http"
	"github.com/spec-kit/health-records-service/internal/api/http/handlers"
	"github.com/spec-kit/health-records-service/internal/auth"
	"github.com/spec-kit/health-records-service/internal/clock"
	"github.com/spec-kit/health-records-service/internal/config"
	"github.com/spec-kit/health-records-service/internal/events"
	"github.com/spec-kit/health-records-service/internal/observability"
	"github.com/spec-kit/health-records-service/internal/persistence"
	"github.com/spec-kit/health-records-service/internal/repository"
	"github.com/spec-kit/health-records-service/internal/service"
	"github.com/spec-kit/health-records-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	roleRepo := repository.NewRoleRepository(pool)
	recordRepo := repository.NewRecordRepository(pool)
	consentRepo := repository.NewConsentRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	clk := clock.System{}

	authority := service.NewAuthorityService(roleRepo, dispatcher, clk)
	vault := service.NewVaultService(recordRepo, authority, dispatcher, clk)
	consents := service.NewConsentService(consentRepo, dispatcher, clk)
	scheduler := service.NewSchedulerService(appointmentRepo, authority, dispatcher, clk)
	audit := service.NewAuditService(dispatcher, auditRepo, authority, logger)
	authService := service.NewAuthService(cfg.Auth, credentialRepo, authority)

	worker.StartAuditWorker(audit)

	if err := bootstrap(ctx, cfg.Bootstrap, authority, vault, logger); err != nil {
		logger.Fatal("bootstrap failed", zap.Error(err))
	}

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(authority, vault, authService, audit),
		Records:        handlers.NewRecordsHandler(vault),
		Consents:       handlers.NewConsentsHandler(consents),
		Appointments:   handlers.NewAppointmentsHandler(scheduler),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// bootstrap provisions the deployment-operator identities: the first
// administrator and, optionally, the vault's authorized writer. Until this
// has happened every privileged entry point fails closed.
func bootstrap(ctx context.Context, cfg config.BootstrapConfig, authority *service.AuthorityService, vault *service.VaultService, logger *zap.Logger) error {
	if cfg.AdminPrincipalID == "" {
		logger.Warn("no bootstrap administrator configured; privileged calls will fail until one exists")
		return nil
	}
	if err := authority.Bootstrap(ctx, cfg.AdminPrincipalID); err != nil {
		return err
	}
	logger.Info("administrator provisioned", zap.String("principal_id", cfg.AdminPrincipalID))

	if cfg.WriterPrincipalID != "" {
		writer, err := vault.AuthorizedWriter(ctx)
		if err != nil {
			return err
		}
		if writer == "" {
			if err := vault.SetAuthorizedWriter(ctx, cfg.AdminPrincipalID, cfg.WriterPrincipalID); err != nil {
				return err
			}
			logger.Info("vault writer provisioned", zap.String("principal_id", cfg.WriterPrincipalID))
		}
	}
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
