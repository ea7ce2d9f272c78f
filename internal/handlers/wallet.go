package handlers

import (
	"investa/internal/services/wallet"
	"investa/internal/utils"
	"investa/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// WalletHandler serves the member's balance, withdrawals, transactions and ROI.
type WalletHandler struct {
	wallet *wallet.Service
}

func NewWalletHandler(walletService *wallet.Service) *WalletHandler {
	return &WalletHandler{wallet: walletService}
}

type withdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Network string          `json:"network" validate:"required,max=255"`
}

// Balance returns the caller's withdrawable balance and its components.
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	b, err := h.wallet.BalanceBreakdown(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, "Wallet balance retrieved", fiber.Map{
		"wallet_balance":      utils.Money(b.Available),
		"total_roi":           utils.Money(b.ROI),
		"total_referral_fees": utils.Money(b.ReferralFees),
		"total_withdrawn":     utils.Money(b.Withdrawn),
	})
}

// RequestWithdrawal opens a pending withdrawal for the caller.
func (h *WalletHandler) RequestWithdrawal(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req withdrawalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	w, err := h.wallet.RequestWithdrawal(c.UserContext(), a.UserID, req.Amount, req.Network)
	if err != nil {
		return err
	}
	return utils.Created(c, "Withdrawal request submitted successfully", presentWithdrawal(w))
}

// Withdrawals pages the caller's withdrawal requests.
func (h *WalletHandler) Withdrawals(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.wallet.ListWithdrawals(c.UserContext(), wallet.ListFilter{
		UserID: a.UserID,
		Status: c.Query("status"),
	}, p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Withdrawals retrieved", pagination.Response("withdrawals", p, total, presentWithdrawals(rows)))
}

// Transactions pages the caller's deposit and withdrawal transactions.
func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.wallet.ListTransactions(c.UserContext(), a.UserID, c.Query("search"), p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Transactions retrieved", pagination.Response("transactions", p, total, presentTransactions(rows)))
}

// DailyROIs pages the caller's ROI history.
func (h *WalletHandler) DailyROIs(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.wallet.ListROI(c.UserContext(), a.UserID, c.Query("search"), p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Daily ROIs retrieved", pagination.Response("daily_rois", p, total, presentROIs(rows)))
}

// UserROI returns the caller's total accrued ROI.
func (h *WalletHandler) UserROI(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	b, err := h.wallet.BalanceBreakdown(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, "ROI retrieved", fiber.Map{"total_roi": utils.Money(b.ROI)})
}
