package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the single session cookie carrying the signed credential.
const CookieName = "token"

// SessionTransport moves the credential between client and server via an HTTP
// cookie. It holds no mutable state; every method is a pure request/response
// transformation.
type SessionTransport struct {
	secure bool
	maxAge time.Duration
}

// NewSessionTransport builds the transport. secure controls the cookie's
// Secure attribute and should be true only in production builds.
func NewSessionTransport(secure bool, maxAge time.Duration) *SessionTransport {
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &SessionTransport{secure: secure, maxAge: maxAge}
}

// Attach sets the session cookie on the response.
//
// SameSite is Lax uniformly: the gate redirects unauthenticated browser
// navigation to /login, and a Strict cookie would be dropped on exactly those
// top-level navigations.
func (s *SessionTransport) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Read extracts the raw credential from the request, or "" when absent.
func (s *SessionTransport) Read(c *fiber.Ctx) string {
	return c.Cookies(CookieName)
}

// Clear overwrites the cookie with an empty value and an immediate expiry,
// forcing client-side deletion.
func (s *SessionTransport) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
