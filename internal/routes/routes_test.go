package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"investa/internal/handlers"
	"investa/internal/middleware"
	"investa/internal/models"
	"investa/internal/repositories/memstore"
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.UserClaims, error) {
	args := m.Called(token)
	if c, ok := args.Get(0).(*models.UserClaims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(t *testing.T) (*fiber.App, *MockAuthenticator) {
	t.Helper()
	store := memstore.New()
	store.SeedUser(models.User{Model: gorm.Model{ID: 1}, FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ADA00001"})
	store.SeedUser(models.User{Model: gorm.Model{ID: 99}, FirstName: "Root", Email: "root@example.com", Promocode: "REF_ROOT0001", Role: models.RoleAdmin})
	store.SeedCompanyWallet(models.CompanyWallet{Network: "TRC20", Address: "TXYZ"})

	log := zap.NewNop()
	interests := interest.NewService(store.Interests())
	walletService := wallet.NewService(store.Ledger(), wallet.WalletConfig{}, nil, log)
	referralService := referral.NewService(store.Ledger(), store.Users(), interests, nil, log)
	depositService := deposit.NewService(store.Ledger(), store.Users(), store.CompanyWallets(), referralService, deposit.Config{}, log)
	companyWallets := companywallet.NewService(store.CompanyWallets())
	engine := roi.NewEngine(store.Ledger(), interests, nil, roi.Config{}, nil, log)
	authService := auth.NewService(store.Users(), auth.TokenConfig{Secret: "test", TTL: time.Hour}, log)

	authenticator := new(MockAuthenticator)
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	SetupRoutes(app, Handlers{
		Auth:         handlers.NewAuthHandler(authService, user.NewService(store.Users())),
		User:         handlers.NewUserHandler(membership.NewService(store.Users(), store.Memberships(), decimal.NewFromInt(50), log), referralService),
		Wallet:       handlers.NewWalletHandler(walletService),
		Deposit:      handlers.NewDepositHandler(depositService, companyWallets),
		Admin:        handlers.NewAdminHandler(depositService, walletService, companyWallets, interests, engine, time.UTC),
		Dashboard:    handlers.NewDashboardHandler(dashboard.NewService(store.Ledger(), store.Users(), walletService)),
		Notification: handlers.NewNotificationHandler(notification.NewService(store.Notifications(), store.Users(), log)),
		Health: handlers.NewHealthHandler(map[string]handlers.Check{
			"database": func(context.Context) error { return nil },
		}, nil),
		Metrics: handlers.Metrics(prometheus.NewRegistry()),
	}, middleware.NewAuthMiddleware(authenticator, log))

	member := &models.UserClaims{UserID: 1, Role: models.RoleClient, Permissions: models.GetDefaultPermissions(models.RoleClient)}
	admin := &models.UserClaims{UserID: 99, Role: models.RoleAdmin, Permissions: models.GetDefaultPermissions(models.RoleAdmin)}
	authenticator.On("Authenticate", "member-token").Return(member, nil)
	authenticator.On("Authenticate", "admin-token").Return(admin, nil)
	authenticator.On("Authenticate", "revoked-token").Return(nil, auth.ErrTokenRevoked)
	return app, authenticator
}

func get(t *testing.T, app *fiber.App, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestRoutes_Authentication(t *testing.T) {
	app, authenticator := newRouter(t)

	status, body := get(t, app, "/api/user", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthenticated.", body["message"])

	status, body = get(t, app, "/api/user", "revoked-token")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_REVOKED", body["code"])

	status, _ = get(t, app, "/api/user", "member-token")
	assert.Equal(t, http.StatusOK, status)

	// public
	status, _ = get(t, app, "/api/networks", "")
	assert.Equal(t, http.StatusOK, status)

	authenticator.AssertNumberOfCalls(t, "Authenticate", 2)
}

func TestRoutes_AdminGate(t *testing.T) {
	app, _ := newRouter(t)

	status, body := get(t, app, "/api/admin/summary", "member-token")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ADMIN_ONLY", body["code"])

	status, _ = get(t, app, "/api/admin/summary", "admin-token")
	assert.Equal(t, http.StatusOK, status)

	status, _ = get(t, app, "/api/admin/withdrawals-admin", "admin-token")
	assert.Equal(t, http.StatusOK, status)
}

func TestRoutes_UnreadCountBeforeShow(t *testing.T) {
	app, _ := newRouter(t)

	status, body := get(t, app, "/api/notifications/unread-count", "member-token")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["unread_count"])
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	app, _ := newRouter(t)

	status, body := get(t, app, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

