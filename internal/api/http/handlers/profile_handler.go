package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/researcher-directory/internal/api/dto"
	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/service"
	apperrors "github.com/spec-kit/researcher-directory/pkg/util"
)

// ProfileHandler exposes self-service profile editing.
type ProfileHandler struct {
	directory *service.DirectoryService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(directory *service.DirectoryService) *ProfileHandler {
	return &ProfileHandler{directory: directory}
}

// Update handles PUT /api/profile. The identity comes from the gate-verified
// claims; a member can only edit their own record here.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	claims, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	researcher, err := h.directory.UpdateProfile(c.Context(), claims.Subject, service.ProfileUpdateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Institution:     req.Institution,
		FieldOfResearch: req.FieldOfResearch,
		ProfilePicture:  req.ProfilePicture,
		ImageKey:        req.ImageKey,
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewResearcherResponse(researcher)})
}
