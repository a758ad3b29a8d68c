package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/researcher-directory/internal/api/dto"
	"github.com/spec-kit/researcher-directory/internal/service"
	apperrors "github.com/spec-kit/researcher-directory/pkg/util"
)

// UsersHandler exposes directory read endpoints for authenticated members.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	researchers, err := h.directory.List(c.Context(), limit, offset)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewResearcherResponses(researchers)})
}

// Search handles GET /api/users/search. Rate-limited per client address.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(http.StatusBadRequest, "q required")
	}

	researchers, err := h.directory.Search(c.Context(), query, c.QueryInt("limit", 0))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewResearcherResponses(researchers)})
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	researcher, err := h.directory.Get(c.Context(), c.Params("id"))
	if err != nil {
		return apperrors.NewNotFound("researcher", nil)
	}
	return c.JSON(fiber.Map{"data": dto.NewResearcherResponse(researcher)})
}
