package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CategoryRepository manages the flat category registry.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name)
        VALUES ($1)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, category.Name).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `
        SELECT id, name, created_at, updated_at
        FROM categories WHERE id=$1`
	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	const query = `
        SELECT id, name, created_at, updated_at
        FROM categories WHERE name=$1`
	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&category.ID,
		&category.Name,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT id, name, created_at, updated_at
        FROM categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}
