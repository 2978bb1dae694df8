package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Multipart form fields; attachment is handled
// separately by the handler.
type CreateTicketRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category"`
}

// UpdateTicketRequest payload. All fields optional.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus `json:"status"`
	Comment    *string              `json:"comment"`
	AssignedTo *string              `json:"assigned_to"`
}

// CategorySummary is a resolved category reference.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PrincipalSummary is a resolved principal reference.
type PrincipalSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CommentAuthor identifies a comment writer.
type CommentAuthor struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// CommentResponse is one entry of a ticket thread.
type CommentResponse struct {
	Text      string         `json:"text"`
	Author    *CommentAuthor `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
}

// TicketResponse is a resolved ticket. Comments is omitted on list responses.
type TicketResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    *CategorySummary    `json:"category"`
	Status      domain.TicketStatus `json:"status"`
	CreatedBy   *PrincipalSummary   `json:"created_by"`
	AssignedTo  *PrincipalSummary   `json:"assigned_to"`
	Attachment  *string             `json:"attachment,omitempty"`
	Comments    []CommentResponse   `json:"comments,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// StatusCountResponse pairs a status with its count.
type StatusCountResponse struct {
	Status domain.TicketStatus `json:"status"`
	Count  int64               `json:"count"`
}

// StatsResponse aggregates ticket counts for the dashboard.
type StatsResponse struct {
	Total    int64                 `json:"total"`
	Open     int64                 `json:"open"`
	Resolved int64                 `json:"resolved"`
	ByStatus []StatusCountResponse `json:"byStatus"`
}
