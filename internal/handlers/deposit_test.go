package handlers

import (
	"net/http"
	"testing"

	"investa/internal/models"
	"investa/internal/repositories/memstore"
	"investa/internal/services/companywallet"
	"investa/internal/services/deposit"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDepositApp(t *testing.T, paid bool) (*fiber.App, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	store.SeedUser(models.User{Model: gorm.Model{ID: memberClaims.UserID}, FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ADA00001", MembershipFeePaid: paid})
	store.SeedUser(models.User{Model: gorm.Model{ID: 2}, FirstName: "Eve", Email: "eve@example.com", Promocode: "REF_EVE00001", MembershipFeePaid: true})
	store.SeedCompanyWallet(models.CompanyWallet{Network: "TRC20", Address: "TXYZ"})
	store.SeedCompanyWallet(models.CompanyWallet{Network: "ERC20", Address: "0xabc"})

	deposits := deposit.NewService(store.Ledger(), store.Users(), store.CompanyWallets(), nil,
		deposit.Config{RequireMembership: true}, zap.NewNop())
	h := NewDepositHandler(deposits, companywallet.NewService(store.CompanyWallets()))

	app := newApp(memberClaims)
	app.Get("/api/networks", h.Networks)
	app.Get("/api/company-wallets", h.CompanyWallet)
	app.Get("/api/deposits", h.List)
	app.Post("/api/deposits", h.Create)
	app.Put("/api/deposits/:id/reference", h.UpdateReference)
	app.Get("/api/total-completed-deposits", h.TotalCompleted)
	return app, store
}

func TestDepositHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		app, _ := newDepositApp(t, true)

		res := call(t, app, http.MethodPost, "/api/deposits", fiber.Map{"amount": "250", "network": "TRC20"})
		require.Equal(t, http.StatusCreated, res.Status)
		data := res.data(t)
		assert.Equal(t, "250.00", data["amount"])
		assert.Equal(t, models.StatusPending, data["status"])
		assert.Equal(t, notAvailable, data["reference_number"])
	})

	t.Run("membership unpaid", func(t *testing.T) {
		app, _ := newDepositApp(t, false)

		res := call(t, app, http.MethodPost, "/api/deposits", fiber.Map{"amount": "250", "network": "TRC20"})
		assert.Equal(t, http.StatusForbidden, res.Status)
		assert.Equal(t, "MEMBERSHIP_UNPAID", res.Body["code"])
	})

	t.Run("unknown network", func(t *testing.T) {
		app, _ := newDepositApp(t, true)

		res := call(t, app, http.MethodPost, "/api/deposits", fiber.Map{"amount": "250", "network": "BEP20"})
		require.Equal(t, http.StatusUnprocessableEntity, res.Status)
		assert.Equal(t, []interface{}{"The selected network is invalid."}, res.fields(t)["network"])
	})

	t.Run("amount below minimum", func(t *testing.T) {
		app, _ := newDepositApp(t, true)

		res := call(t, app, http.MethodPost, "/api/deposits", fiber.Map{"amount": "0.001", "network": "TRC20"})
		require.Equal(t, http.StatusUnprocessableEntity, res.Status)
		assert.Contains(t, res.fields(t), "amount")
	})
}

func TestDepositHandler_UpdateReference(t *testing.T) {
	app, store := newDepositApp(t, true)
	own := store.SeedDeposit(models.Deposit{UserID: memberClaims.UserID, Amount: d("100"), Status: models.StatusPending, Network: "TRC20"})
	other := store.SeedDeposit(models.Deposit{UserID: 2, Amount: d("100"), Status: models.StatusPending, Network: "TRC20"})
	store.SeedDeposit(models.Deposit{UserID: memberClaims.UserID, Amount: d("100"), Status: models.StatusCompleted, Network: "TRC20"})

	res := call(t, app, http.MethodPut, "/api/deposits/1/reference", fiber.Map{"reference_number": "0xhash"})
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	assert.Equal(t, "0xhash", res.data(t)["reference_number"])
	stored, _ := store.Deposit(own.ID)
	assert.Equal(t, "0xhash", stored.ReferenceNumber)

	res = call(t, app, http.MethodPut, "/api/deposits/2/reference", fiber.Map{"reference_number": "0xhash"})
	assert.Equal(t, http.StatusNotFound, res.Status)
	stored, _ = store.Deposit(other.ID)
	assert.Empty(t, stored.ReferenceNumber)

	res = call(t, app, http.MethodPut, "/api/deposits/3/reference", fiber.Map{"reference_number": "0xhash"})
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = call(t, app, http.MethodPut, "/api/deposits/abc/reference", fiber.Map{"reference_number": "0xhash"})
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestDepositHandler_Lookups(t *testing.T) {
	app, store := newDepositApp(t, true)
	store.SeedDeposit(models.Deposit{UserID: memberClaims.UserID, Amount: d("100"), Status: models.StatusCompleted, Network: "TRC20"})
	store.SeedDeposit(models.Deposit{UserID: memberClaims.UserID, Amount: d("40.5"), Status: models.StatusCompleted, Network: "TRC20"})
	store.SeedDeposit(models.Deposit{UserID: memberClaims.UserID, Amount: d("900"), Status: models.StatusPending, Network: "TRC20"})
	store.SeedDeposit(models.Deposit{UserID: 2, Amount: d("500"), Status: models.StatusCompleted, Network: "TRC20"})

	res := call(t, app, http.MethodGet, "/api/networks", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.ElementsMatch(t, []interface{}{"TRC20", "ERC20"}, res.data(t)["networks"])

	res = call(t, app, http.MethodGet, "/api/company-wallets?network=ERC20", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "0xabc", res.data(t)["address"])

	res = call(t, app, http.MethodGet, "/api/company-wallets?network=BEP20", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = call(t, app, http.MethodGet, "/api/total-completed-deposits", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "140.50", res.data(t)["total_completed_deposits"])

	res = call(t, app, http.MethodGet, "/api/deposits?status=completed", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, res.data(t)["deposits"], 2)

	res = call(t, app, http.MethodGet, "/api/deposits?status=all", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, res.data(t)["deposits"], 3)
}
