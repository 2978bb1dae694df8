package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

// Ticket creation deliberately emits no event: nobody is notified on create.
const (
	EventTicketUpdated EventType = "ticket_updated"
)

// Recipient is an interested party resolved to a deliverable address.
type Recipient struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketUpdatedPayload carries what changed in a single updateTicket call.
// Recipients is already deduplicated; each gets at most one notification.
type TicketUpdatedPayload struct {
	Title      string               `json:"title"`
	Status     domain.TicketStatus  `json:"status"`
	NewStatus  *domain.TicketStatus `json:"new_status,omitempty"`
	AssignedTo *string              `json:"assigned_to,omitempty"`
	Comment    string               `json:"comment,omitempty"`
	Recipients []Recipient          `json:"recipients"`
}
