package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hostel-complaint-service/internal/api/http"
	"github.com/spec-kit/hostel-complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/hostel-complaint-service/internal/auth"
	"github.com/spec-kit/hostel-complaint-service/internal/config"
	"github.com/spec-kit/hostel-complaint-service/internal/events"
	"github.com/spec-kit/hostel-complaint-service/internal/observability"
	"github.com/spec-kit/hostel-complaint-service/internal/persistence"
	"github.com/spec-kit/hostel-complaint-service/internal/repository"
	"github.com/spec-kit/hostel-complaint-service/internal/service"
	"github.com/spec-kit/hostel-complaint-service/internal/worker"
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
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	actionRepo := repository.NewActionRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		StudentRepo:       studentRepo,
		AdminRepo:         adminRepo,
		PasswordResetRepo: resetRepo,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:  complaintRepo,
		ActionRepo:     actionRepo,
		AttachmentRepo: attachmentRepo,
		Dispatcher:     dispatcher,
		IDRetries:      cfg.Wizard.IDCollisionRetries,
	})
	wizardService := service.NewWizardService(cfg.Wizard, complaintService)
	statsService := service.NewStatsService(complaintRepo, redis, logger, cfg.Redis.StatsTTL())
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), studentRepo, adminRepo)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env == "production"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	studentsHandler := handlers.NewStudentsHandler(authService)
	complaintsHandler := handlers.NewComplaintsHandler(complaintService, wizardService)
	adminHandler := handlers.NewAdminHandler(authService, complaintService, statsService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Students:       studentsHandler,
		Complaints:     complaintsHandler,
		Admin:          adminHandler,
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

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
