package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(t *testing.T, limiter Limiter, class Class) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Post("/target", Middleware(limiter, class), func(c *fiber.Ctx) error {
		return c.SendString("reached")
	})
	return app
}

func TestMiddleware_DeniesWith429AndHeaders(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(Limits{ClassLogin: 2}, time.Minute)
	m.now = func() time.Time { return now }
	app := newLimitedApp(t, m, ClassLogin)

	send := func() *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/target", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := send()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	require.Equal(t, "1", resp.Header.Get("X-RateLimit-Remaining"))

	send()
	resp = send()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	require.Equal(t, "60", resp.Header.Get("X-RateLimit-Retry-After"))

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Too many requests", body.Error)
	require.Equal(t, 60, body.RetryAfter)
}

func TestMiddleware_SeparatesClientsByForwardedAddress(t *testing.T) {
	t.Parallel()

	m := NewMemory(Limits{ClassLogin: 1}, time.Minute)
	app := newLimitedApp(t, m, ClassLogin)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/target", nil)
		req.Header.Set("X-Forwarded-For", addr)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, send("1.2.3.4"))
	require.Equal(t, http.StatusTooManyRequests, send("1.2.3.4, 10.0.0.1"))
	require.Equal(t, http.StatusOK, send("5.6.7.8"))
}

func TestClientAddress_Fallbacks(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	var got string
	app.Get("/addr", func(c *fiber.Ctx) error {
		got = ClientAddress(c)
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/addr", nil)
	req.Header.Set("X-Forwarded-For", " 9.9.9.9 , 10.0.0.1")
	_, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "9.9.9.9", got)

	req = httptest.NewRequest(http.MethodGet, "/addr", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")
	_, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "8.8.8.8", got)

	req = httptest.NewRequest(http.MethodGet, "/addr", nil)
	_, err = app.Test(req)
	require.NoError(t, err)
	require.NotEmpty(t, got)
}
