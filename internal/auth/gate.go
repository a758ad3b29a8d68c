package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/researcher-directory/internal/domain"
	apperrors "github.com/spec-kit/researcher-directory/pkg/util"
)

const claimsKey = "auth_claims"

// Access is the required-role predicate attached to a route prefix.
type Access int

const (
	// AccessAnonymousOnly admits only unauthenticated clients; an
	// authenticated client is redirected to its landing page.
	AccessAnonymousOnly Access = iota
	// AccessAuthenticated admits any valid credential.
	AccessAuthenticated
	// AccessAdmin admits only the admin role.
	AccessAdmin
	// AccessAdminOrModerator admits admin and moderator roles.
	AccessAdminOrModerator
)

// Rule maps a path prefix to a required-role predicate.
type Rule struct {
	Prefix string
	Access Access
}

// DefaultRules is the policy table for the directory. Order matters: a more
// specific prefix must precede its containing, stricter prefix so exceptions
// are not shadowed. Paths matching no rule pass through unexamined; every
// protected namespace must be enumerated here.
var DefaultRules = []Rule{
	{Prefix: "/api/admin/moderation", Access: AccessAdminOrModerator},
	{Prefix: "/api/admin", Access: AccessAdmin},
	{Prefix: "/api/users", Access: AccessAuthenticated},
	{Prefix: "/api/profile", Access: AccessAuthenticated},
	{Prefix: "/admin/moderation", Access: AccessAdminOrModerator},
	{Prefix: "/admin", Access: AccessAdmin},
	{Prefix: "/moderation", Access: AccessAdminOrModerator},
	{Prefix: "/dashboard", Access: AccessAuthenticated},
	{Prefix: "/profile", Access: AccessAuthenticated},
	{Prefix: "/login", Access: AccessAnonymousOnly},
}

// Gate runs ahead of every handler and decides allow, redirect, or reject
// based on the session credential and the policy table.
type Gate struct {
	tokens   *TokenManager
	sessions *SessionTransport
	rules    []Rule
}

// NewGate constructs the gate with an ordered rule list.
func NewGate(tokens *TokenManager, sessions *SessionTransport, rules []Rule) *Gate {
	if rules == nil {
		rules = DefaultRules
	}
	return &Gate{tokens: tokens, sessions: sessions, rules: rules}
}

// Handle is the per-request policy decision. It never returns an error other
// than the structured 401/403 values consumed by the error middleware; every
// other path ends in a forward or a redirect.
func (g *Gate) Handle(c *fiber.Ctx) error {
	claims := g.tokens.Verify(g.sessions.Read(c))
	if claims != nil {
		c.Locals(claimsKey, claims)
	}

	path := c.Path()
	rule, matched := g.classify(path)
	if !matched {
		return c.Next()
	}

	api := strings.HasPrefix(path, "/api/")

	switch rule.Access {
	case AccessAnonymousOnly:
		if claims != nil {
			return c.Redirect(LandingPage(claims.Role), fiber.StatusFound)
		}
	case AccessAuthenticated:
		if claims == nil {
			return g.rejectUnauthenticated(c, api)
		}
	case AccessAdmin:
		if claims == nil {
			return g.rejectUnauthenticated(c, api)
		}
		if claims.Role != domain.RoleAdmin {
			return g.rejectForbidden(c, api, claims.Role)
		}
	case AccessAdminOrModerator:
		if claims == nil {
			return g.rejectUnauthenticated(c, api)
		}
		if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleModerator {
			return g.rejectForbidden(c, api, claims.Role)
		}
	}

	return c.Next()
}

// classify returns the first rule whose prefix matches the path.
func (g *Gate) classify(path string) (Rule, bool) {
	for _, rule := range g.rules {
		if strings.HasPrefix(path, rule.Prefix) {
			return rule, true
		}
	}
	return Rule{}, false
}

func (g *Gate) rejectUnauthenticated(c *fiber.Ctx, api bool) error {
	if api {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.Redirect("/login", fiber.StatusFound)
}

func (g *Gate) rejectForbidden(c *fiber.Ctx, api bool, role domain.Role) error {
	if api {
		return apperrors.NewForbidden("insufficient role")
	}
	return c.Redirect(LandingPage(role), fiber.StatusFound)
}

// LandingPage maps a role to its default authenticated landing page.
func LandingPage(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleModerator:
		return "/moderation"
	default:
		return "/dashboard"
	}
}

// CurrentUser retrieves the verified claims the gate stored for this request.
// This is a convenience re-read, not a second security check.
func CurrentUser(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
