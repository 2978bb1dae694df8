package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CategoriesHandler manages the category registry endpoints.
type CategoriesHandler struct {
	service *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categoryService *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{service: categoryService}
}

// List GET /api/categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	categories, err := h.service.List(c.Context(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, categoryResponse(&category))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/categories (admin).
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.service.Create(c.Context(), principal, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// Delete DELETE /api/categories/:id (admin).
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "category deleted"})
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}
