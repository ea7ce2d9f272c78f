// Package main is the entry point for the API server. It wires repositories,
// services and handlers, starts the daily ROI scheduler and serves HTTP until
// interrupted.
package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"investa/internal/config"
	"investa/internal/handlers"
	"investa/internal/logger"
	"investa/internal/metrics"
	"investa/internal/middleware"
	"investa/internal/repositories"
	"investa/internal/repositories/cache"
	"investa/internal/routes"
	"investa/internal/scheduler"
	"investa/internal/services/auth"
	"investa/internal/services/companywallet"
	"investa/internal/services/dashboard"
	"investa/internal/services/deposit"
	"investa/internal/services/interest"
	"investa/internal/services/membership"
	"investa/internal/services/notification"
	"investa/internal/services/referral"
	"investa/internal/services/roi"
	"investa/internal/services/user"
	"investa/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := repositories.InitDB(cfg); err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer closeStores(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(reg)

	db := repositories.DB
	ledger := repositories.NewLedgerRepository(db)
	users := repositories.NewUserRepository(db, repositories.CacheService, log)
	interestRepo := repositories.NewInterestRepository(db)
	walletRepo := repositories.NewCompanyWalletRepository(db)

	interestService := interest.NewService(interestRepo)
	authService := auth.NewService(users, auth.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.AccessTokenTTL}, log)
	userService := user.NewService(users)
	walletService := wallet.NewService(ledger, wallet.WalletConfig{MinWithdrawal: cfg.MinWithdrawalAmount}, collector, log)
	referralService := referral.NewService(ledger, users, interestService, collector, log)
	depositService := deposit.NewService(ledger, users, walletRepo, referralService,
		deposit.Config{RequireMembership: cfg.RequireMembership}, log)
	companyWallets := companywallet.NewService(walletRepo)
	membershipService := membership.NewService(users, repositories.NewMembershipRepository(db), cfg.MembershipFee, log)
	notificationService := notification.NewService(repositories.NewNotificationRepository(db), users, log)
	dashboardService := dashboard.NewService(ledger, users, walletService)

	var locker roi.Locker
	if repositories.CacheService != nil {
		locker = cache.NewLocker(repositories.CacheService.Client())
	}
	engine := roi.NewEngine(ledger, interestService, locker, roi.Config{Location: cfg.Location()}, collector, log)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get database instance", zap.Error(err))
	}
	checks := map[string]handlers.Check{"database": sqlDB.PingContext}
	if repositories.CacheService != nil {
		checks["redis"] = repositories.CacheService.HealthCheck
	}

	app := fiber.New(fiber.Config{
		AppName:      "investa",
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins(), ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(collector.Middleware())
	for _, path := range []string{"/api/register", "/api/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"message": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	routes.SetupRoutes(app, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, userService),
		User:         handlers.NewUserHandler(membershipService, referralService),
		Wallet:       handlers.NewWalletHandler(walletService),
		Deposit:      handlers.NewDepositHandler(depositService, companyWallets),
		Admin:        handlers.NewAdminHandler(depositService, walletService, companyWallets, interestService, engine, cfg.Location()),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Health:       handlers.NewHealthHandler(checks, repositories.CacheService),
		Metrics:      handlers.Metrics(reg),
	}, middleware.NewAuthMiddleware(authService, log))

	sched, err := scheduler.New(cfg.ROISchedule, cfg.Location(), engine, log)
	if err != nil {
		log.Fatal("invalid ROI schedule", zap.String("schedule", cfg.ROISchedule), zap.Error(err))
	}
	sched.Start(cfg.ROIRunOnStart)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	log.Info("server started", zap.String("port", cfg.Port), zap.String("roi_schedule", cfg.ROISchedule))

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("scheduler did not stop in time", zap.Error(err))
	}
}

func closeStores(log *zap.Logger) {
	if repositories.DB != nil {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("failed to close database connection", zap.Error(err))
			}
		}
	}
	if repositories.CacheService != nil {
		if err := repositories.CacheService.Close(); err != nil {
			log.Warn("failed to close redis connection", zap.Error(err))
		}
	}
}
