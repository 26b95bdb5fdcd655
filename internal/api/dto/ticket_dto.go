package dto

import (
	"time"

	"github.com/spec-kit/hosting-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	ClientInfo  *string               `json:"client_info"`
	SiteTag     *string               `json:"site_tag"`
}

// UpdateTicketRequest is the admin patch payload.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus   `json:"status"`
	Priority   *domain.TicketPriority `json:"priority"`
	AssignedTo *string                `json:"assigned_to"`
	Note       *string                `json:"note"`
}

// CreateResponseRequest payload.
type CreateResponseRequest struct {
	Message  string  `json:"message"`
	URL      *string `json:"url"`
	URLLabel *string `json:"url_label"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string                `json:"id"`
	ExternalKey    string                `json:"external_key"`
	Subject        string                `json:"subject"`
	Category       string                `json:"category"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	OwnerID        string                `json:"owner_id"`
	OwnerName      string                `json:"owner_name,omitempty"`
	AssignedTo     *string               `json:"assigned_to"`
	LastUpdateNote *string               `json:"last_update_note"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID             string                   `json:"id"`
	ExternalKey    string                   `json:"external_key"`
	Subject        string                   `json:"subject"`
	Description    string                   `json:"description"`
	Category       string                   `json:"category"`
	Status         domain.TicketStatus      `json:"status"`
	Priority       domain.TicketPriority    `json:"priority"`
	OwnerID        string                   `json:"owner_id"`
	OwnerName      string                   `json:"owner_name,omitempty"`
	AssignedTo     *string                  `json:"assigned_to"`
	Resolution     *string                  `json:"resolution"`
	ClosedAt       *time.Time               `json:"closed_at"`
	ClosedBy       *string                  `json:"closed_by"`
	LastUpdateNote *string                  `json:"last_update_note"`
	ClientInfo     *string                  `json:"client_info"`
	SiteTag        *string                  `json:"site_tag"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
	Responses      []TicketResponseResponse `json:"responses"`
}

// TicketResponseResponse represents one thread message.
type TicketResponseResponse struct {
	ID              string    `json:"id"`
	TicketID        string    `json:"ticket_id"`
	AuthorName      string    `json:"author_name"`
	AuthorEmail     string    `json:"author_email,omitempty"`
	IsAdminResponse bool      `json:"is_admin_response"`
	Message         string    `json:"message"`
	URL             *string   `json:"url,omitempty"`
	URLLabel        *string   `json:"url_label,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
