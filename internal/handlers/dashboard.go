package handlers

import (
	"investa/internal/services/dashboard"
	"investa/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboard *dashboard.Service
}

func NewDashboardHandler(dashboardService *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardService}
}

// Member returns the caller's balance and deposit totals.
func (h *DashboardHandler) Member(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	s, err := h.dashboard.MemberSummary(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, "Dashboard data retrieved successfully", fiber.Map{
		"wallet_balance":           utils.Money(s.Balance.Available),
		"total_roi":                utils.Money(s.Balance.ROI),
		"total_referral_fees":      utils.Money(s.Balance.ReferralFees),
		"total_withdrawn":          utils.Money(s.Balance.Withdrawn),
		"total_completed_deposits": utils.Money(s.TotalCompletedDeposits),
		"pending_withdrawal":       utils.Money(s.PendingWithdrawal),
	})
}

// AdminSummary returns platform-wide totals.
func (h *DashboardHandler) AdminSummary(c *fiber.Ctx) error {
	s, err := h.dashboard.AdminSummary(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Success(c, "Summary retrieved", fiber.Map{
		"total_completed_deposits":  utils.Money(s.TotalCompletedDeposits),
		"total_pending_withdrawals": utils.Money(s.TotalPendingWithdrawals),
		"total_withdrawn":           utils.Money(s.TotalWithdrawn),
		"total_transactions":        utils.Money(s.TotalTransactions),
		"total_members":             s.TotalMembers,
	})
}
