package domain

import "time"

// Fallback author names when the user record carries no display name.
const (
	AuthorNameAgent  = "Support Agent"
	AuthorNameClient = "Client"
)

// TicketResponse is a threaded message attached to a ticket. Responses
// are append-only: never mutated or deleted, ordered by CreatedAt
// ascending within a ticket.
type TicketResponse struct {
	ID              string
	TicketID        string
	AuthorName      string
	AuthorEmail     string
	IsAdminResponse bool
	Message         string
	RefURL          *string
	RefURLLabel     *string
	CreatedAt       time.Time
}
