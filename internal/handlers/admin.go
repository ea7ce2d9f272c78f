package handlers

import (
	"strings"
	"time"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/services/companywallet"
	"investa/internal/services/deposit"
	"investa/internal/services/interest"
	"investa/internal/services/roi"
	"investa/internal/services/wallet"
	"investa/internal/utils"
	"investa/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AdminHandler serves the back-office endpoints. Every route is mounted
// behind middleware.AdminOnly.
type AdminHandler struct {
	deposits  *deposit.Service
	wallet    *wallet.Service
	wallets   *companywallet.Service
	interests *interest.Service
	roi       *roi.Engine
	location  *time.Location
}

func NewAdminHandler(
	depositService *deposit.Service,
	walletService *wallet.Service,
	companyWallets *companywallet.Service,
	interests *interest.Service,
	engine *roi.Engine,
	location *time.Location,
) *AdminHandler {
	if location == nil {
		location = time.UTC
	}
	return &AdminHandler{
		deposits:  depositService,
		wallet:    walletService,
		wallets:   companyWallets,
		interests: interests,
		roi:       engine,
		location:  location,
	}
}

type depositStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed"`
}

type withdrawalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed failed"`
}

type recordWithdrawalRequest struct {
	UserID          uint            `json:"user_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Network         string          `json:"network" validate:"required,max=255"`
	Status          string          `json:"status" validate:"required,oneof=pending completed failed"`
	ReferenceNumber string          `json:"reference_number" validate:"max=255"`
}

type companyWalletRequest struct {
	Network string `json:"network" validate:"required,max=255"`
	Address string `json:"address" validate:"required,max=255"`
}

type interestRequest struct {
	Type       string          `json:"type" validate:"required,oneof=daily_investment referral_fee"`
	Percentage decimal.Decimal `json:"percentage" validate:"gte=0,lte=100"`
	Status     string          `json:"status" validate:"required,oneof=active inactive"`
}

type generateROIRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Transactions pages every member's transactions, filtered by ?status= and ?search=.
func (h *AdminHandler) Transactions(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.wallet.SearchTransactions(c.UserContext(), repositories.TransactionFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}, p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Transactions retrieved", pagination.Response("transactions", p, total, presentTransactions(rows)))
}

// PendingWithdrawalsTotal sums every pending withdrawal.
func (h *AdminHandler) PendingWithdrawalsTotal(c *fiber.Ctx) error {
	total, err := h.wallet.PendingTotal(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Success(c, "Pending withdrawals total retrieved", fiber.Map{
		"total_pending_withdrawals": utils.Money(total),
	})
}

// PendingDeposits pages deposits awaiting a decision.
func (h *AdminHandler) PendingDeposits(c *fiber.Ctx) error {
	return h.listDeposits(c, models.StatusPending)
}

// MemberDeposits pages deposits filtered by ?status= (default all) and ?search=.
func (h *AdminHandler) MemberDeposits(c *fiber.Ctx) error {
	return h.listDeposits(c, c.Query("status", "all"))
}

func (h *AdminHandler) listDeposits(c *fiber.Ctx, status string) error {
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.deposits.List(c.UserContext(), repositories.DepositFilter{
		Status: status,
		Search: c.Query("search"),
	}, p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Deposits retrieved", pagination.Response("deposits", p, total, presentDeposits(rows)))
}

// UpdateDepositStatus moves a deposit to pending, completed or failed.
func (h *AdminHandler) UpdateDepositStatus(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req depositStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	d, err := h.deposits.UpdateStatus(c.UserContext(), a, id, req.Status)
	if err != nil {
		return err
	}
	return utils.Success(c, "Deposit status updated successfully", presentDeposit(d))
}

// PendingWithdrawalRequests pages withdrawals awaiting a decision.
func (h *AdminHandler) PendingWithdrawalRequests(c *fiber.Ctx) error {
	return h.listWithdrawals(c, models.StatusPending)
}

// Withdrawals pages every withdrawal filtered by ?status= and ?search=.
func (h *AdminHandler) Withdrawals(c *fiber.Ctx) error {
	status := c.Query("status")
	if status == "all" {
		status = ""
	}
	return h.listWithdrawals(c, status)
}

func (h *AdminHandler) listWithdrawals(c *fiber.Ctx, status string) error {
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.wallet.ListWithdrawals(c.UserContext(), wallet.ListFilter{
		Status: status,
		Search: c.Query("search"),
	}, p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Withdrawals retrieved", pagination.Response("withdrawals", p, total, presentWithdrawals(rows)))
}

// UpdateWithdrawalStatus completes or fails a pending withdrawal.
func (h *AdminHandler) UpdateWithdrawalStatus(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "withdrawalId")
	if err != nil {
		return err
	}
	var req withdrawalStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	w, err := h.wallet.ProcessWithdrawal(c.UserContext(), a, id, req.Status)
	if err != nil {
		return err
	}
	return utils.Success(c, "Withdrawal status updated successfully", presentWithdrawal(w))
}

// RecordWithdrawal enters a withdrawal on a member's behalf.
func (h *AdminHandler) RecordWithdrawal(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req recordWithdrawalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	w, err := h.wallet.RecordWithdrawal(c.UserContext(), a, wallet.RecordInput{
		UserID:          req.UserID,
		Amount:          req.Amount,
		Network:         req.Network,
		Status:          req.Status,
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, "Withdrawal recorded successfully", presentWithdrawal(w))
}

// DailyROIs pages every member's ROI entries, filtered by ?search=.
func (h *AdminHandler) DailyROIs(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.wallet.ListROI(c.UserContext(), 0, c.Query("search"), p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Daily ROIs retrieved", pagination.Response("daily_rois", p, total, presentROIs(rows)))
}

// GenerateROI runs the accrual sweep for the given date, today by default.
func (h *AdminHandler) GenerateROI(c *fiber.Ctx) error {
	var req generateROIRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}

	date := h.roi.Today()
	if req.Date = strings.TrimSpace(req.Date); req.Date != "" {
		parsed, err := utils.ParseDate(req.Date, h.location)
		if err != nil {
			return apperrors.Field("date", "The date must be in YYYY-MM-DD format.")
		}
		date = parsed
	}

	res, err := h.roi.Generate(c.UserContext(), date)
	if err != nil {
		return err
	}
	return utils.Success(c, "ROI generated successfully", fiber.Map{
		"date":         utils.Date(res.Date),
		"rate":         utils.Rate(res.Rate),
		"processed":    res.Processed,
		"created":      res.Created,
		"skipped":      res.Skipped,
		"failed":       res.Failed,
		"total_amount": utils.Money(res.Total),
	})
}

// CompanyWallets pages company wallets filtered by ?search=.
func (h *AdminHandler) CompanyWallets(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.wallets.List(c.UserContext(), c.Query("search"), p.Window())
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(rows))
	for i := range rows {
		items = append(items, presentCompanyWallet(&rows[i]))
	}
	return utils.Success(c, "Company wallets retrieved", pagination.Response("company_wallets", p, total, items))
}

func (h *AdminHandler) CreateCompanyWallet(c *fiber.Ctx) error {
	var req companyWalletRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	w, err := h.wallets.Create(c.UserContext(), companywallet.Input{Network: req.Network, Address: req.Address})
	if err != nil {
		return err
	}
	return utils.Created(c, "Company wallet created successfully", presentCompanyWallet(w))
}

func (h *AdminHandler) UpdateCompanyWallet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req companyWalletRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	w, err := h.wallets.Update(c.UserContext(), id, companywallet.Input{Network: req.Network, Address: req.Address})
	if err != nil {
		return err
	}
	return utils.Success(c, "Company wallet updated successfully", presentCompanyWallet(w))
}

func (h *AdminHandler) CompanyInterests(c *fiber.Ctx) error {
	rows, err := h.interests.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(rows))
	for i := range rows {
		items = append(items, presentInterest(&rows[i]))
	}
	return utils.Success(c, "Company interests retrieved", items)
}

func (h *AdminHandler) CreateCompanyInterest(c *fiber.Ctx) error {
	var req interestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ci, err := h.interests.Create(c.UserContext(), interest.Input{
		Type:       req.Type,
		Percentage: req.Percentage,
		Status:     req.Status,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, "Company interest created successfully", presentInterest(ci))
}

func (h *AdminHandler) UpdateCompanyInterest(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req interestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ci, err := h.interests.Update(c.UserContext(), id, interest.Input{
		Type:       req.Type,
		Percentage: req.Percentage,
		Status:     req.Status,
	})
	if err != nil {
		return err
	}
	return utils.Success(c, "Company interest updated successfully", presentInterest(ci))
}

func (h *AdminHandler) DeleteCompanyInterest(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.interests.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return utils.Success(c, "Company interest deleted successfully", nil)
}
