package dto

import "time"

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse represents a registry entry.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
