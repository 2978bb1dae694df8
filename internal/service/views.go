package service

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CategorySummary is a display-friendly category reference.
type CategorySummary struct {
	ID   string
	Name string
}

// PrincipalSummary is a display-friendly principal reference.
type PrincipalSummary struct {
	ID    string
	Name  string
	Email string
}

// CommentAuthor identifies who wrote a comment.
type CommentAuthor struct {
	Name string
	Role domain.Role
}

// CommentView is a resolved comment thread entry.
type CommentView struct {
	Text      string
	Author    *CommentAuthor
	CreatedAt time.Time
}

// TicketView is a ticket with its weak references resolved for presentation.
// Category, CreatedBy and AssignedTo are nil when the referenced record no
// longer exists (no referential cascade is enforced).
type TicketView struct {
	ID          string
	Title       string
	Description string
	Category    *CategorySummary
	Status      domain.TicketStatus
	CreatedBy   *PrincipalSummary
	AssignedTo  *PrincipalSummary
	Attachment  *string
	Comments    []CommentView
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
