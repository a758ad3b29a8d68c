package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/researcher-directory/internal/domain"
	apperrors "github.com/spec-kit/researcher-directory/pkg/util"
)

func newGateApp(t *testing.T) (*fiber.App, *TokenManager) {
	t.Helper()

	tm := NewTokenManager("gate-test-secret", time.Hour)
	sessions := NewSessionTransport(false, time.Hour)
	gate := NewGate(tm, sessions, DefaultRules)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Code})
		},
	})
	app.Use(gate.Handle)
	app.All("/*", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, tm
}

func tokenFor(t *testing.T, tm *TokenManager, role domain.Role) string {
	t.Helper()

	tok, _, err := tm.Issue(NewClaims(&domain.Researcher{
		ID:       "id-" + string(role),
		Email:    string(role) + "@example.edu",
		Username: string(role),
		Role:     role,
	}))
	require.NoError(t, err)
	return tok
}

func gateRequest(t *testing.T, app *fiber.App, path, cookie string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGate_AnonymousOnBrowserRoutesRedirectsToLogin(t *testing.T) {
	t.Parallel()
	app, _ := newGateApp(t)

	for _, path := range []string{"/dashboard", "/profile", "/admin", "/moderation"} {
		resp := gateRequest(t, app, path, "")
		require.Equal(t, http.StatusFound, resp.StatusCode, path)
		require.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestGate_AnonymousOnAPIRoutesGets401(t *testing.T) {
	t.Parallel()
	app, _ := newGateApp(t)

	for _, path := range []string{"/api/users", "/api/profile", "/api/admin/users", "/api/admin/moderation/flags"} {
		resp := gateRequest(t, app, path, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestGate_InsufficientRole(t *testing.T) {
	t.Parallel()
	app, tm := newGateApp(t)
	userTok := tokenFor(t, tm, domain.RoleUser)

	resp := gateRequest(t, app, "/api/admin/users", userTok)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Browser-route equivalent redirects to the role's landing page.
	resp = gateRequest(t, app, "/admin", userTok)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestGate_PolicyPrecedence_ModerationSubPrefix(t *testing.T) {
	t.Parallel()
	app, tm := newGateApp(t)

	// The moderation sub-prefix sits inside the admin-only namespace; the
	// specific rule must win so moderators are admitted.
	resp := gateRequest(t, app, "/api/admin/moderation/flags", tokenFor(t, tm, domain.RoleModerator))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The same sub-prefix still rejects a plain user.
	resp = gateRequest(t, app, "/api/admin/moderation/flags", tokenFor(t, tm, domain.RoleUser))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Outside the sub-prefix the containing admin rule applies to moderators.
	resp = gateRequest(t, app, "/api/admin/users", tokenFor(t, tm, domain.RoleModerator))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGate_AdminAdmitted(t *testing.T) {
	t.Parallel()
	app, tm := newGateApp(t)
	adminTok := tokenFor(t, tm, domain.RoleAdmin)

	for _, path := range []string{"/api/admin/users", "/api/admin/moderation/flags", "/admin", "/moderation", "/dashboard"} {
		resp := gateRequest(t, app, path, adminTok)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestGate_LoginPageRedirectsAuthenticatedByRole(t *testing.T) {
	t.Parallel()
	app, tm := newGateApp(t)

	cases := []struct {
		role    domain.Role
		landing string
	}{
		{domain.RoleAdmin, "/admin"},
		{domain.RoleModerator, "/moderation"},
		{domain.RoleUser, "/dashboard"},
	}
	for _, tc := range cases {
		resp := gateRequest(t, app, "/login", tokenFor(t, tm, tc.role))
		require.Equal(t, http.StatusFound, resp.StatusCode, tc.role)
		require.Equal(t, tc.landing, resp.Header.Get("Location"), tc.role)
	}

	// Anonymous clients reach the login page.
	resp := gateRequest(t, app, "/login", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGate_UnmatchedPathPassesThrough(t *testing.T) {
	t.Parallel()
	app, tm := newGateApp(t)

	// Current behavior: the policy table is an allow-list of protected
	// prefixes, so an unlisted path is forwarded regardless of
	// authentication state.
	for _, cookie := range []string{"", tokenFor(t, tm, domain.RoleUser)} {
		resp := gateRequest(t, app, "/about", cookie)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestGate_TamperedCookieTreatedAsAnonymous(t *testing.T) {
	t.Parallel()
	app, tm := newGateApp(t)

	tok := tokenFor(t, tm, domain.RoleAdmin)
	tampered := tok + "x"

	resp := gateRequest(t, app, "/api/admin/users", tampered)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = gateRequest(t, app, "/dashboard", tampered)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}
