package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/researcher-directory/internal/api/dto"
	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/domain"
	"github.com/spec-kit/researcher-directory/internal/service"
	apperrors "github.com/spec-kit/researcher-directory/pkg/util"
)

// AdminHandler exposes admin user management. The gate has already enforced
// the admin role for this namespace; handlers only read the actor identity.
type AdminHandler struct {
	directory *service.DirectoryService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(directory *service.DirectoryService) *AdminHandler {
	return &AdminHandler{directory: directory}
}

// CreateUser handles POST /api/admin/users. Rate-limited per client address.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email, username, password required")
	}

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	actor, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	researcher, err := h.directory.Create(c.Context(), actor.Subject, service.CreateResearcherInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		Role:            role,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Institution:     req.Institution,
		FieldOfResearch: req.FieldOfResearch,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewResearcherResponse(researcher)})
}

// UpdateUser handles PUT /api/admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	input := service.UpdateResearcherInput{
		Institution:     req.Institution,
		FieldOfResearch: req.FieldOfResearch,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !role.Valid() {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": *req.Role})
		}
		input.Role = &role
	}
	if req.Status != nil {
		status := domain.ResearcherStatus(*req.Status)
		input.Status = &status
	}

	actor, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	researcher, err := h.directory.Update(c.Context(), actor.Subject, c.Params("id"), input)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewResearcherResponse(researcher)})
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.directory.Delete(c.Context(), actor.Subject, c.Params("id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ModerationFlags handles GET /api/admin/moderation/flags, the
// moderator-reachable corner of the admin namespace.
func (h *AdminHandler) ModerationFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"flags": []string{}}})
}
