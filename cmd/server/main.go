package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/payvault/backend/internal/config"
	"github.com/payvault/backend/internal/explorer"
	"github.com/payvault/backend/internal/handler"
	"github.com/payvault/backend/internal/identity"
	"github.com/payvault/backend/internal/middleware"
	"github.com/payvault/backend/internal/repository"
	"github.com/payvault/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.Server.Environment != "development" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	verifier := explorer.NewClient(
		cfg.Explorer.BaseURL,
		cfg.Explorer.APIKey,
		cfg.Explorer.ReceivingAddress,
		cfg.Explorer.TokenDecimals,
		cfg.Platform.DepositTolerance,
		cfg.Explorer.RequestTimeout,
		cfg.Explorer.MaxRetries,
	)
	ids := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey)

	// Services
	commissionEngine := service.NewCommissionEngine(repo, cfg.Platform.CommissionRate, cfg.Worker.CommissionMaxAttempts)
	registry := service.NewAccountRegistry(repo, verifier, ids, cfg.Platform)
	accountSvc := service.NewAccountService(repo)
	transferEngine := service.NewTransferEngine(repo, commissionEngine)
	withdrawalEngine := service.NewWithdrawalEngine(repo, cfg.Platform)
	adminSvc := service.NewAdminService(repo)

	h := handler.New(cfg, registry, accountSvc, transferEngine, withdrawalEngine, adminSvc)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", h.Health)

	// Public API
	app.Post("/api/register", h.Register)

	// Authenticated API
	api := app.Group("/api", middleware.Auth(cfg))

	api.Get("/user/me", h.GetMe)
	api.Post("/user/pin", h.SetTransactionPassword)
	api.Post("/user/balance-visibility", h.SetBalanceVisibility)

	api.Post("/transfer", h.Transfer)
	api.Get("/transactions", h.GetTransactions)

	api.Post("/withdrawals", h.RequestWithdrawal)
	api.Get("/withdrawals", h.GetWithdrawals)

	api.Get("/referral/stats", h.GetReferralStats)

	// Admin panel
	admin := app.Group("/api/admin", middleware.Auth(cfg), middleware.AdminOnly())
	admin.Get("/stats", h.GetAdminStats)
	admin.Get("/users/pending", h.ListPendingAccounts)
	admin.Post("/users/:account_id/approve", h.ApproveAccount)
	admin.Post("/users/:account_id/reject", h.RejectAccount)
	admin.Get("/users/:account_id/audit", h.AuditAccount)
	admin.Get("/withdrawals/pending", h.ListPendingWithdrawals)
	admin.Post("/withdrawals/:withdrawal_id/approve", h.ApproveWithdrawal)
	admin.Post("/withdrawals/:withdrawal_id/reject", h.RejectWithdrawal)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Re-drive commission credits whose synchronous attempt failed.
	worker := service.NewCommissionWorker(commissionEngine, cfg.Worker.CommissionInterval)
	go worker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logrus.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	}()

	logrus.Infof("Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
