package domain

import "time"

// Category is an admin-managed classification tag. Names are unique with
// case-sensitive exact matching.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
