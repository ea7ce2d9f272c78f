package handlers

import (
	"investa/internal/services/membership"
	"investa/internal/services/referral"
	"investa/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// UserHandler serves the member's membership and referral endpoints.
type UserHandler struct {
	membership *membership.Service
	referral   *referral.Service
}

func NewUserHandler(membershipService *membership.Service, referralService *referral.Service) *UserHandler {
	return &UserHandler{membership: membershipService, referral: referralService}
}

type membershipRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Network       string          `json:"network" validate:"required"`
	WalletAddress string          `json:"company_wallet_address" validate:"required,max=255"`
}

type referralFeeRequest struct {
	ReferredUserID uint `json:"referred_user_id" validate:"required"`
	TransactionID  uint `json:"transaction_id"`
}

// PayMembershipFee records the caller's membership payment.
func (h *UserHandler) PayMembershipFee(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req membershipRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	fee, err := h.membership.Pay(c.UserContext(), a, membership.PayInput{
		Amount:        req.Amount,
		Network:       req.Network,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, "Membership fee paid successfully", fiber.Map{
		"id":               fee.ID,
		"amount":           utils.Money(fee.Amount),
		"network":          fee.Network,
		"wallet_address":   fee.WalletAddress,
		"status":           fee.Status,
		"reference_number": fee.ReferenceNumber,
	})
}

// MembershipStatus reports whether the caller has paid the membership fee.
func (h *UserHandler) MembershipStatus(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	st, err := h.membership.Status(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"membership_fee_paid": st.Paid,
		"fee_amount":          utils.Money(st.FeeAmount),
		"network":             st.Network,
		"wallet_address":      st.WalletAddress,
		"latest_payment":      nil,
	}
	if st.Latest != nil {
		data["latest_payment"] = fiber.Map{
			"amount":           utils.Money(st.Latest.Amount),
			"status":           st.Latest.Status,
			"reference_number": st.Latest.ReferenceNumber,
			"date":             utils.Date(st.Latest.CreatedAt),
		}
	}
	return utils.Success(c, "Membership status retrieved", data)
}

// ReferredUsers lists deposits made by members the caller referred.
func (h *UserHandler) ReferredUsers(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	report, err := h.referral.ReferredDeposits(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}

	rows := make([]fiber.Map, 0, len(report.Rows))
	for _, r := range report.Rows {
		var fee interface{}
		if r.HasReferralFee {
			fee = utils.Money(r.ReferralFee)
		}
		rows = append(rows, fiber.Map{
			"user_id":        r.UserID,
			"first_name":     r.FirstName,
			"last_name":      r.LastName,
			"transaction_id": r.TransactionID,
			"deposit_amount": utils.Money(r.DepositAmount),
			"deposit_status": r.DepositStatus,
			"deposit_date":   utils.Date(r.DepositCreatedAt),
			"referral_fee":   fee,
			"fee_generated":  r.HasReferralFee,
		})
	}
	return utils.Success(c, "Referred users retrieved", fiber.Map{
		"deposits":           rows,
		"total_referral_fee": utils.Money(report.TotalEarned),
	})
}

// GenerateReferralFees creates the caller's fees for one referred member,
// either for every eligible deposit or for a single transaction.
func (h *UserHandler) GenerateReferralFees(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req referralFeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if req.TransactionID != 0 {
		fee, err := h.referral.GenerateForDeposit(c.UserContext(), a.UserID, req.ReferredUserID, req.TransactionID)
		if err != nil {
			return err
		}
		return utils.Created(c, "Referral fee generated successfully", fiber.Map{
			"transaction_id": fee.TransactionID,
			"deposit_amount": utils.Money(fee.DepositAmount),
			"fee_amount":     utils.Money(fee.FeeAmount),
			"rate":           utils.Rate(fee.Rate),
		})
	}

	res, err := h.referral.GenerateForReferredUser(c.UserContext(), a.UserID, req.ReferredUserID)
	if err != nil {
		return err
	}
	return utils.Success(c, "Referral fees generated successfully", fiber.Map{
		"created":      res.Created,
		"skipped":      res.Skipped,
		"total_amount": utils.Money(res.Total),
	})
}
