package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures listing parameters. All fields are opt-in; an empty
// filter returns every ticket.
type TicketFilter struct {
	Status     *domain.TicketStatus
	CreatedBy  *string
	AssignedTo *string
}

// TicketRepository encapsulates ticket persistence. The store owns the ticket
// records and their comment threads; comments are append-only.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	AppendComment(ctx context.Context, comment *domain.Comment) error
	ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error)
	Stats(ctx context.Context) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category_id, status, created_by, assigned_to, attachment)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.Status,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.Attachment,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, assigned_to=$2, attachment=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Status,
		ticket.AssignedTo,
		ticket.Attachment,
		ticket.ID,
	).Scan(&ticket.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, category_id, status, created_by, assigned_to, attachment, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.CategoryID,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.Attachment,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, description, category_id, status, created_by, assigned_to, attachment, created_at, updated_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) AppendComment(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, author_id, text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *ticketRepository) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, text, created_at
        FROM ticket_comments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Text,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Stats(ctx context.Context) (*domain.TicketStats, error) {
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status ORDER BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.TicketStats{}
	for rows.Next() {
		var entry domain.StatusCount
		if err := rows.Scan(&entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		stats.ByStatus = append(stats.ByStatus, entry)
		stats.Total += entry.Count
		switch entry.Status {
		case domain.TicketStatusOpen:
			stats.Open = entry.Count
		case domain.TicketStatusResolved:
			stats.Resolved = entry.Count
		}
	}
	return stats, rows.Err()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.CategoryID,
			&ticket.Status,
			&ticket.CreatedBy,
			&ticket.AssignedTo,
			&ticket.Attachment,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
