package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestCategoryServiceCreate(t *testing.T) {
	admin := &domain.User{ID: "usr-admin", Role: domain.RoleAdmin}
	agent := &domain.User{ID: "usr-agent", Role: domain.RoleAgent}
	svc := NewCategoryService(newMemCategoryRepo())

	category, err := svc.Create(context.Background(), admin, "  Billing  ")
	require.NoError(t, err)
	assert.Equal(t, "Billing", category.Name)
	assert.NotEmpty(t, category.ID)

	_, err = svc.Create(context.Background(), admin, "Billing")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", errCode(t, err))

	_, err = svc.Create(context.Background(), admin, "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.Create(context.Background(), agent, "Technical")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestCategoryServiceList(t *testing.T) {
	customer := &domain.User{ID: "usr-cust", Role: domain.RoleCustomer}
	repo := newMemCategoryRepo(
		&domain.Category{ID: "cat-1", Name: "Billing"},
		&domain.Category{ID: "cat-2", Name: "Technical"},
	)
	svc := NewCategoryService(repo)

	categories, err := svc.List(context.Background(), customer)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	_, err = svc.List(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}

func TestCategoryServiceDelete(t *testing.T) {
	admin := &domain.User{ID: "usr-admin", Role: domain.RoleAdmin}
	customer := &domain.User{ID: "usr-cust", Role: domain.RoleCustomer}
	repo := newMemCategoryRepo(&domain.Category{ID: "cat-1", Name: "Billing"})
	svc := NewCategoryService(repo)

	err := svc.Delete(context.Background(), customer, "cat-1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	require.NoError(t, svc.Delete(context.Background(), admin, "cat-1"))

	err = svc.Delete(context.Background(), admin, "cat-1")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}
