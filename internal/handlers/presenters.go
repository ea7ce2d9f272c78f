package handlers

import (
	"time"

	"investa/internal/models"
	"investa/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const notAvailable = "N/A"

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func owner(u *models.User) fiber.Map {
	if u == nil {
		return nil
	}
	return fiber.Map{
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"email":          u.Email,
		"wallet_address": orNA(u.NetworkAddress),
	}
}

func presentUser(u *models.User) fiber.Map {
	return fiber.Map{
		"id":                  u.ID,
		"first_name":          u.FirstName,
		"last_name":           u.LastName,
		"email":               u.Email,
		"phone_number":        u.PhoneNumber,
		"role":                u.Role,
		"network":             u.Network,
		"network_address":     u.NetworkAddress,
		"promocode":           u.Promocode,
		"referred_by":         u.ReferredBy,
		"membership_fee_paid": u.MembershipFeePaid,
	}
}

func presentDeposit(d *models.Deposit) fiber.Map {
	return fiber.Map{
		"id":               d.ID,
		"user_id":          d.UserID,
		"amount":           utils.Money(d.Amount),
		"status":           d.Status,
		"network":          d.Network,
		"reference_number": orNA(d.ReferenceNumber),
		"transaction_id":   d.TransactionID,
		"type":             models.TransactionTypeDeposit,
		"date":             utils.Date(d.CreatedAt),
		"created_at":       timestamp(d.CreatedAt),
		"user":             owner(d.User),
	}
}

func presentDeposits(rows []models.Deposit) []fiber.Map {
	out := make([]fiber.Map, 0, len(rows))
	for i := range rows {
		out = append(out, presentDeposit(&rows[i]))
	}
	return out
}

func presentTransaction(t *models.Transaction) fiber.Map {
	return fiber.Map{
		"id":               t.ID,
		"user_id":          t.UserID,
		"type":             t.Type,
		"amount":           utils.Money(t.Amount),
		"status":           t.Status,
		"network":          t.Network,
		"reference_number": orNA(t.ReferenceNumber),
		"date":             utils.DBDate(t.Date),
		"created_at":       timestamp(t.CreatedAt),
		"user":             owner(t.User),
	}
}

func presentTransactions(rows []models.Transaction) []fiber.Map {
	out := make([]fiber.Map, 0, len(rows))
	for i := range rows {
		out = append(out, presentTransaction(&rows[i]))
	}
	return out
}

func presentWithdrawal(w *models.Withdrawal) fiber.Map {
	m := fiber.Map{
		"id":               w.ID,
		"user_id":          w.UserID,
		"amount":           utils.Money(w.Amount),
		"status":           w.Status,
		"network":          w.Network,
		"reference_number": orNA(w.ReferenceNumber),
		"transaction_id":   w.TransactionID,
		"type":             models.TransactionTypeWithdrawal,
		"date":             utils.Date(w.CreatedAt),
		"created_at":       timestamp(w.CreatedAt),
		"processed_at":     nil,
		"user":             owner(w.User),
	}
	if w.ProcessedAt != nil {
		m["processed_at"] = timestamp(*w.ProcessedAt)
	}
	return m
}

func presentWithdrawals(rows []models.Withdrawal) []fiber.Map {
	out := make([]fiber.Map, 0, len(rows))
	for i := range rows {
		out = append(out, presentWithdrawal(&rows[i]))
	}
	return out
}

func presentROIs(rows []models.DailyROI) []fiber.Map {
	out := make([]fiber.Map, 0, len(rows))
	for _, r := range rows {
		out = append(out, fiber.Map{
			"id":         r.ID,
			"user_id":    r.UserID,
			"deposit_id": r.DepositID,
			"amount":     utils.Money(r.Amount),
			"rate":       utils.Rate(r.Rate),
			"date":       utils.DBDate(r.Date),
			"user":       owner(r.User),
		})
	}
	return out
}

func presentInterest(ci *models.CompanyInterest) fiber.Map {
	return fiber.Map{
		"id":         ci.ID,
		"type":       ci.Type,
		"percentage": utils.Rate(ci.Percentage),
		"status":     ci.Status,
	}
}

func presentCompanyWallet(w *models.CompanyWallet) fiber.Map {
	return fiber.Map{
		"id":      w.ID,
		"network": w.Network,
		"address": w.Address,
	}
}

func presentNotification(row *models.NotificationRecipient) fiber.Map {
	m := fiber.Map{
		"id":      row.NotificationID,
		"is_read": row.IsRead,
		"read_at": nil,
	}
	if row.ReadAt != nil {
		m["read_at"] = timestamp(*row.ReadAt)
	}
	if n := row.Notification; n != nil {
		m["title"] = n.Title
		m["message"] = n.Message
		m["image"] = n.Image
		m["created_at"] = timestamp(n.CreatedAt)
		if n.Sender != nil {
			m["sender"] = fiber.Map{"id": n.Sender.ID, "name": n.Sender.FullName()}
		}
	}
	return m
}
