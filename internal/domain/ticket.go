package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// DefaultCategory is applied when a ticket is created without one.
const DefaultCategory = "general"

// Ticket is the aggregate for support requests. OwnerID is immutable
// after creation and determines default visibility scope.
type Ticket struct {
	ID             string
	ExternalKey    string
	OwnerID        string
	Subject        string
	Description    string
	Category       string
	Status         TicketStatus
	Priority       TicketPriority
	AssignedTo     *string
	Resolution     *string
	ClosedAt       *time.Time
	ClosedBy       *string
	LastUpdateNote *string
	ClientInfo     *string
	SiteTag        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Denormalized owner fields for search over name/email; populated
	// on list reads, never written back.
	OwnerName  string
	OwnerEmail string
}

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}
