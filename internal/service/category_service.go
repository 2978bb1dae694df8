package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CategoryService manages the admin-owned category registry.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns all categories for any authenticated principal.
func (s *CategoryService) List(ctx context.Context, principal *domain.User) ([]domain.Category, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionListCategories, nil) {
		return nil, apperrors.NewForbidden("not authorized")
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// Create adds a category. Admin only; names are unique (case-sensitive).
func (s *CategoryService) Create(ctx context.Context, principal *domain.User, name string) (*domain.Category, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionCreateCategory, nil) {
		return nil, apperrors.NewForbidden("admin role required")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}

	if _, err := s.categories.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("category already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	category := &domain.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// Delete removes a category. Admin only. Tickets referencing the category are
// left untouched; their category renders as unresolved afterwards.
func (s *CategoryService) Delete(ctx context.Context, principal *domain.User, id string) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionDeleteCategory, nil) {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("category", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
