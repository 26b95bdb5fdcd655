package events

import (
	"time"

	"github.com/spec-kit/hosting-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketResponseAdded EventType = "ticket_response_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject  string                `json:"subject"`
	Category string                `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// TicketResponseAddedPayload payload.
type TicketResponseAddedPayload struct {
	ResponseID      string `json:"response_id"`
	IsAdminResponse bool   `json:"is_admin_response"`
	MessagePreview  string `json:"message_preview"`
}
