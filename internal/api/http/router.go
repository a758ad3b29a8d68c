package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/researcher-directory/internal/api/http/handlers"
	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Users   *handlers.UsersHandler
	Admin   *handlers.AdminHandler
	Profile *handlers.ProfileHandler
	Gate    *auth.Gate
	Limiter ratelimit.Limiter

	// OnRateLimited, when set, observes every throttled request.
	OnRateLimited ratelimit.DenyHook
}

// RegisterRoutes wires HTTP routes. The gate runs app-wide ahead of every
// handler; rate limiting is attached per sensitive route class.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	limited := func(class ratelimit.Class) fiber.Handler {
		if cfg.OnRateLimited != nil {
			return ratelimit.Middleware(cfg.Limiter, class, cfg.OnRateLimited)
		}
		return ratelimit.Middleware(cfg.Limiter, class)
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", limited(ratelimit.ClassLogin), cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Auth.Me)
	authGroup.Post("/password/reset/request", limited(ratelimit.ClassDefault), cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.Auth.ChangePassword)

	users := app.Group("/api/users")
	users.Get("/search", limited(ratelimit.ClassSearch), cfg.Users.Search)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)

	admin := app.Group("/api/admin")
	admin.Get("/moderation/flags", cfg.Admin.ModerationFlags)
	admin.Post("/users", limited(ratelimit.ClassCreateUser), cfg.Admin.CreateUser)
	admin.Put("/users/:id", cfg.Admin.UpdateUser)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)

	app.Put("/api/profile", cfg.Profile.Update)
}
