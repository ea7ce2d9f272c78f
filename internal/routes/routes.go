// Package routes mounts every API endpoint on the Fiber app.
package routes

import (
	"investa/internal/handlers"
	"investa/internal/middleware"
	"investa/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Wallet       *handlers.WalletHandler
	Deposit      *handlers.DepositHandler
	Admin        *handlers.AdminHandler
	Dashboard    *handlers.DashboardHandler
	Notification *handlers.NotificationHandler
	Health       *handlers.HealthHandler
	Metrics      fiber.Handler
}

// SetupRoutes configures all application routes under /api.
func SetupRoutes(app *fiber.App, h Handlers, authMW *middleware.AuthMiddleware) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to Investa API", "docs": "/api"})
	})
	if h.Health != nil {
		app.Get("/health", h.Health.Health)
	}
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	api := app.Group("/api")

	// public
	api.Post("/register", h.Auth.Register)
	api.Post("/login", h.Auth.Login)
	api.Get("/networks", h.Deposit.Networks)

	protected := api.Group("", authMW.Handler)

	protected.Get("/user", h.Auth.Me)
	protected.Post("/logout", h.Auth.Logout)
	protected.Put("/profile", h.Auth.UpdateProfile)
	protected.Post("/user/update-password", middleware.HasPermission(models.PermissionChangePassword), h.Auth.UpdatePassword)
	protected.Post("/pay-membership-fee", h.User.PayMembershipFee)
	protected.Get("/membership-status", h.User.MembershipStatus)
	protected.Get("/user/referred-users", h.User.ReferredUsers)
	protected.Post("/user/generate-referral-fees", h.User.GenerateReferralFees)
	protected.Get("/dashboard", h.Dashboard.Member)

	protected.Get("/company-wallets", h.Deposit.CompanyWallet)
	protected.Get("/company-wallets/networks", h.Deposit.Networks)
	protected.Get("/deposits", h.Deposit.List)
	protected.Post("/deposits", middleware.HasPermission(models.PermissionDepositWrite), h.Deposit.Create)
	protected.Put("/deposits/:id/reference", middleware.HasPermission(models.PermissionDepositWrite), h.Deposit.UpdateReference)
	protected.Get("/total-completed-deposits", h.Deposit.TotalCompleted)

	protected.Get("/transactions", h.Wallet.Transactions)
	protected.Get("/user-transactions", h.Wallet.Transactions)
	protected.Get("/withdrawals", h.Wallet.Withdrawals)
	protected.Post("/request-withdrawal", middleware.HasPermission(models.PermissionWithdrawalWrite), h.Wallet.RequestWithdrawal)
	protected.Get("/daily-rois", h.Wallet.DailyROIs)
	protected.Get("/user-roi", h.Wallet.UserROI)
	protected.Get("/user-wallet-amount", middleware.HasPermission(models.PermissionWalletRead), h.Wallet.Balance)

	// unread-count must be registered before :id
	protected.Get("/notifications/unread-count", h.Notification.UnreadCount)
	protected.Get("/notifications", h.Notification.Index)
	protected.Get("/notifications/:id", h.Notification.Show)
	protected.Post("/notifications", middleware.AdminOnly, h.Notification.Create)

	admin := protected.Group("/admin", middleware.AdminOnly)
	admin.Get("/summary", h.Dashboard.AdminSummary)
	admin.Get("/transactions", h.Admin.Transactions)
	admin.Get("/withdrawals/pending", h.Admin.PendingWithdrawalsTotal)
	admin.Get("/deposits/pending", h.Admin.PendingDeposits)
	admin.Get("/withdrawals/pending-requests", h.Admin.PendingWithdrawalRequests)
	admin.Patch("/transactions/:id/status", h.Admin.UpdateDepositStatus)
	admin.Get("/member-deposits", h.Admin.MemberDeposits)
	admin.Post("/record-withdrawal", h.Admin.RecordWithdrawal)
	admin.Get("/company-wallets", h.Admin.CompanyWallets)
	admin.Post("/company-wallets", h.Admin.CreateCompanyWallet)
	admin.Put("/company-wallets/:id", h.Admin.UpdateCompanyWallet)
	admin.Get("/company-interests", h.Admin.CompanyInterests)
	admin.Post("/company-interests", h.Admin.CreateCompanyInterest)
	admin.Put("/company-interests/:id", h.Admin.UpdateCompanyInterest)
	admin.Delete("/company-interests/:id", h.Admin.DeleteCompanyInterest)
	admin.Post("/generate-roi", h.Admin.GenerateROI)
	admin.Get("/daily-rois", h.Admin.DailyROIs)
	admin.Get("/pending-withdrawals", h.Admin.PendingWithdrawalRequests)
	admin.Post("/update-withdrawal-status/:withdrawalId", h.Admin.UpdateWithdrawalStatus)
	admin.Get("/withdrawals-admin", h.Admin.Withdrawals)
	if h.Health != nil {
		admin.Get("/cache-stats", h.Health.CacheStats)
	}
}
