package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Any status may move
// to any other; there is no forbidden-transition table.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ValidTicketStatus reports whether the value is one of the four states.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. CreatedBy is immutable after
// creation; AssignedTo is optional.
type Ticket struct {
	ID          string
	Title       string
	Description string
	CategoryID  string
	Status      TicketStatus
	CreatedBy   string
	AssignedTo  *string
	Attachment  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is an immutable entry in a ticket's thread. Comments are
// append-only and keep insertion order.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// StatusCount pairs a status value with its ticket count.
type StatusCount struct {
	Status TicketStatus
	Count  int64
}

// TicketStats aggregates counts for the dashboard.
type TicketStats struct {
	Total    int64
	Open     int64
	Resolved int64
	ByStatus []StatusCount
}
