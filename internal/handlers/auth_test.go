package handlers

import (
	"net/http"
	"testing"
	"time"

	"investa/internal/models"
	"investa/internal/repositories/memstore"
	"investa/internal/services/auth"
	"investa/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuthApp(t *testing.T, claims *models.UserClaims) (*fiber.App, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	authService := auth.NewService(store.Users(), auth.TokenConfig{Secret: "test-secret", TTL: time.Hour}, zap.NewNop())
	h := NewAuthHandler(authService, user.NewService(store.Users()))

	app := newApp(claims)
	app.Post("/api/register", h.Register)
	app.Post("/api/login", h.Login)
	app.Post("/api/logout", h.Logout)
	app.Get("/api/user", h.Me)
	app.Put("/api/profile", h.UpdateProfile)
	app.Post("/api/user/update-password", h.UpdatePassword)
	return app, store
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	app, store := newAuthApp(t, nil)
	referrer := store.SeedUser(models.User{FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ADA00001"})

	res := call(t, app, http.MethodPost, "/api/register", fiber.Map{
		"first_name":            "Bob",
		"last_name":             "Kay",
		"email":                 "Bob@Example.com",
		"phone_number":          "+15550100",
		"password":              "s3cret-pass",
		"password_confirmation": "s3cret-pass",
		"promocode":             "REF_ADA00001",
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	data := res.data(t)
	assert.NotEmpty(t, data["access_token"])
	u := data["user"].(map[string]interface{})
	assert.Equal(t, "bob@example.com", u["email"])
	assert.Equal(t, models.RoleClient, u["role"])
	assert.Equal(t, float64(referrer.ID), u["referred_by"])
	assert.NotContains(t, u, "password")

	res = call(t, app, http.MethodPost, "/api/login", fiber.Map{"email": "bob@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.NotEmpty(t, res.data(t)["access_token"])

	res = call(t, app, http.MethodPost, "/api/login", fiber.Map{"email": "bob@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "Invalid email or password", res.Body["message"])
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	app, store := newAuthApp(t, nil)
	store.SeedUser(models.User{FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ADA00001"})

	res := call(t, app, http.MethodPost, "/api/register", fiber.Map{"email": "not-an-email"})
	require.Equal(t, http.StatusUnprocessableEntity, res.Status)
	fields := res.fields(t)
	assert.Contains(t, fields, "first_name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	res = call(t, app, http.MethodPost, "/api/register", fiber.Map{
		"first_name":            "Eve",
		"last_name":             "Doe",
		"email":                 "ada@example.com",
		"phone_number":          "+15550101",
		"password":              "s3cret-pass",
		"password_confirmation": "s3cret-pass",
		"promocode":             "NOPE",
	})
	require.Equal(t, http.StatusUnprocessableEntity, res.Status)
	fields = res.fields(t)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "promocode")
}

func TestAuthHandler_Profile(t *testing.T) {
	app, store := newAuthApp(t, memberClaims)
	store.SeedUser(models.User{Model: gorm.Model{ID: memberClaims.UserID}, FirstName: "Ada", LastName: "L", Email: "ada@example.com", Promocode: "REF_ADA00001"})

	res := call(t, app, http.MethodGet, "/api/user", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "ada@example.com", res.data(t)["email"])

	res = call(t, app, http.MethodPut, "/api/profile", fiber.Map{
		"first_name":      "Ada",
		"last_name":       "Lovelace",
		"phone_number":    "+15550100",
		"network":         "TRC20",
		"network_address": "TXYZ",
	})
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	assert.Equal(t, "Lovelace", res.data(t)["last_name"])
	assert.Equal(t, "TXYZ", res.data(t)["network_address"])

	res = call(t, app, http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, res.Status)
	u, _ := store.User(memberClaims.UserID)
	assert.Equal(t, 2, u.TokenVersion)
}
