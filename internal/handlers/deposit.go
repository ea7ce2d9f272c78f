package handlers

import (
	"investa/internal/repositories"
	"investa/internal/services/companywallet"
	"investa/internal/services/deposit"
	"investa/internal/utils"
	"investa/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// DepositHandler serves company wallet lookups and the member's deposits.
type DepositHandler struct {
	deposits *deposit.Service
	wallets  *companywallet.Service
}

func NewDepositHandler(depositService *deposit.Service, walletService *companywallet.Service) *DepositHandler {
	return &DepositHandler{deposits: depositService, wallets: walletService}
}

type depositRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"required,gte=0.01"`
	Network string          `json:"network" validate:"required"`
}

type referenceRequest struct {
	ReferenceNumber string `json:"reference_number" validate:"required,max=255"`
}

// Networks lists the networks that have a company wallet.
func (h *DepositHandler) Networks(c *fiber.Ctx) error {
	networks, err := h.wallets.Networks(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Success(c, "Networks retrieved", fiber.Map{"networks": networks})
}

// CompanyWallet returns the deposit address for ?network=.
func (h *DepositHandler) CompanyWallet(c *fiber.Ctx) error {
	w, err := h.wallets.ForNetwork(c.UserContext(), c.Query("network"))
	if err != nil {
		return err
	}
	return utils.Success(c, "Company wallet retrieved", presentCompanyWallet(w))
}

// Create opens a pending deposit for the caller.
func (h *DepositHandler) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req depositRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	d, err := h.deposits.Create(c.UserContext(), a.UserID, req.Amount, req.Network)
	if err != nil {
		return err
	}
	return utils.Created(c, "Deposit created successfully", presentDeposit(d))
}

// List pages the caller's deposits, optionally filtered by ?status=.
func (h *DepositHandler) List(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.deposits.List(c.UserContext(), repositories.DepositFilter{
		UserID: a.UserID,
		Status: c.Query("status"),
	}, p.Window())
	if err != nil {
		return err
	}
	return utils.Success(c, "Deposits retrieved", pagination.Response("deposits", p, total, presentDeposits(rows)))
}

// UpdateReference sets the payment reference on a pending deposit.
func (h *DepositHandler) UpdateReference(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req referenceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	d, err := h.deposits.UpdateReference(c.UserContext(), a.UserID, id, req.ReferenceNumber)
	if err != nil {
		return err
	}
	return utils.Success(c, "Reference number updated successfully", presentDeposit(d))
}

// TotalCompleted sums the caller's completed deposits.
func (h *DepositHandler) TotalCompleted(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	total, err := h.deposits.TotalCompleted(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, "Total completed deposits retrieved", fiber.Map{
		"total_completed_deposits": utils.Money(total),
	})
}
