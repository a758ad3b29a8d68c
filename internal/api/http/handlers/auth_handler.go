package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/researcher-directory/internal/api/dto"
	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/service"
	apperrors "github.com/spec-kit/researcher-directory/pkg/util"
)

// AuthHandler exposes login, logout, and password endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionTransport
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionTransport) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Login handles POST /api/auth/login. The rate-limit middleware has already
// run; a throttled client never reaches the credential check.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	researcher, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.MapError(err)
	}

	h.sessions.Attach(c, token)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":       dto.NewResearcherResponse(researcher),
			"expires_at": exp,
		},
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if claims, ok := auth.CurrentUser(c); ok {
		h.auth.Logout(c.Context(), claims.Subject)
	}
	h.sessions.Clear(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out"}})
}

// Me handles GET /api/auth/me. Unlike the gate, it re-reads the persisted
// record, so a deleted or suspended account is noticed here.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	researcher, err := h.auth.CurrentResearcher(c.Context(), claims.Subject)
	if err != nil {
		return apperrors.NewUnauthorized("account no longer valid")
	}
	return c.JSON(fiber.Map{"data": dto.NewResearcherResponse(researcher)})
}

// RequestPasswordReset handles POST /api/auth/password/reset/request. The
// response is identical whether or not the email exists.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	// TODO: deliver the token by email once a mailer is wired; until then it
	// only lands in the reset table.
	_, _ = h.auth.RequestPasswordReset(c.Context(), req.Email)

	return c.JSON(fiber.Map{"data": fiber.Map{"message": "if the account exists, a reset link was sent"}})
}

// ConfirmPasswordReset handles POST /api/auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirm
	if err := c.BodyParser(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new_password required")
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid or expired token")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

// ChangePassword handles POST /api/auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "current_password and new_password required")
	}

	if err := h.auth.ChangePassword(c.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		if err == service.ErrInvalidCredentials {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}
