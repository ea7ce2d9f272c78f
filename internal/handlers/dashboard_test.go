package handlers

import (
	"net/http"
	"testing"
	"time"

	"investa/internal/models"
	"investa/internal/repositories/memstore"
	"investa/internal/services/dashboard"
	"investa/internal/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestDashboardHandler(t *testing.T) {
	store := memstore.New()
	user := store.SeedUser(models.User{Model: gorm.Model{ID: memberClaims.UserID}, FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ADA00001"})
	store.SeedUser(models.User{Model: gorm.Model{ID: adminClaims.UserID}, FirstName: "Root", Email: "root@example.com", Promocode: "REF_ROOT0001", Role: models.RoleAdmin})
	store.SeedDeposit(models.Deposit{UserID: user.ID, Amount: d("1000"), Status: models.StatusCompleted, Network: "TRC20"})
	store.SeedDailyROI(models.DailyROI{UserID: user.ID, DepositID: 1, Amount: d("15"), Rate: d("1.5"), Date: memstore.DateOf(2024, time.March, 4)})
	store.SeedTransaction(models.Transaction{UserID: user.ID, Amount: d("1000"), Type: models.TransactionTypeDeposit, Status: models.StatusCompleted})

	walletService := wallet.NewService(store.Ledger(), wallet.WalletConfig{}, nil, zap.NewNop())
	h := NewDashboardHandler(dashboard.NewService(store.Ledger(), store.Users(), walletService))

	memberApp := newApp(memberClaims)
	memberApp.Get("/api/dashboard", h.Member)
	res := call(t, memberApp, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "15.00", res.data(t)["wallet_balance"])
	assert.Equal(t, "1000.00", res.data(t)["total_completed_deposits"])
	assert.Equal(t, "0.00", res.data(t)["pending_withdrawal"])

	adminApp := newApp(adminClaims)
	adminApp.Get("/api/admin/summary", h.AdminSummary)
	res = call(t, adminApp, http.MethodGet, "/api/admin/summary", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "1000.00", res.data(t)["total_completed_deposits"])
	assert.Equal(t, float64(1), res.data(t)["total_members"])
}
