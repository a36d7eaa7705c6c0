package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/middleware"
	"github.com/safein/safein-server/redis"
	"github.com/safein/safein-server/schedule"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID  = uint(3)
	testEmployeeID = uint(7)
)

func newTestHandler(now time.Time) *Handler {
	r := schedule.NewResolver(time.UTC)
	r.Clock = func() time.Time { return now }
	return &Handler{
		Resolver:  r,
		Filters:   redis.NewMemoryFilterStore(),
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
}

// newTestApp mounts routes behind a stub that signs the caller in as the
// given employee, skipping JWT parsing.
func newTestApp(userID uint, role string, mount func(r fiber.Router)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, userID)
		c.Locals(middleware.LocalCompanyID, testCompanyID)
		c.Locals(middleware.LocalRole, role)
		return c.Next()
	})
	mount(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}
