package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"investa/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	adminClaims  = &models.UserClaims{UserID: 99, Role: models.RoleAdmin, Permissions: models.GetDefaultPermissions(models.RoleAdmin)}
	memberClaims = &models.UserClaims{UserID: 1, Role: models.RoleClient, Permissions: models.GetDefaultPermissions(models.RoleClient)}
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newApp returns an app using the production error handler. When claims is
// set every request is treated as authenticated by that caller.
func newApp(claims *models.UserClaims) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	if claims != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("claims", claims)
			c.Locals("userID", claims.UserID)
			return c.Next()
		})
	}
	return app
}

type response struct {
	Status int
	Body   map[string]interface{}
}

// data returns the "data" object of a success envelope.
func (r response) data(t *testing.T) map[string]interface{} {
	t.Helper()
	m, ok := r.Body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", r.Body)
	return m
}

func (r response) fields(t *testing.T) map[string]interface{} {
	t.Helper()
	m, ok := r.Body["errors"].(map[string]interface{})
	require.True(t, ok, "response has no errors object: %v", r.Body)
	return m
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode, Body: map[string]interface{}{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body), "body: %s", raw)
	}
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
