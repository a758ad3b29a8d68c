package ratelimit

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// addressSentinel stands in when no client address can be derived. All such
// requests share one bucket, which is acceptable for a best-effort throttle.
const addressSentinel = "unknown"

// ClientAddress derives the client address from proxy-forwarded headers,
// falling back to the connection's remote address. Only meaningful behind a
// trusted reverse proxy; a direct client can spoof the headers.
func ClientAddress(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if real := c.Get("X-Real-IP"); real != "" {
		return real
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return addressSentinel
}

// DenyHook observes throttled requests, e.g. to publish an audit event.
type DenyHook func(clientAddress string, class Class, retryAfterSeconds int)

// Middleware gates a route on the limiter for the given operation class. The
// quota is consumed before the handler runs, so a denied request never reaches
// business logic. Rate-limit headers are set on every response.
func Middleware(limiter Limiter, class Class, hooks ...DenyHook) fiber.Handler {
	return func(c *fiber.Ctx) error {
		addr := ClientAddress(c)
		result := limiter.Check(addr, class)

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := result.RetryAfterSeconds()
			c.Set("X-RateLimit-Retry-After", strconv.Itoa(retryAfter))
			for _, hook := range hooks {
				hook(addr, class, retryAfter)
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      "Too many requests",
				"retryAfter": retryAfter,
			})
		}

		return c.Next()
	}
}
