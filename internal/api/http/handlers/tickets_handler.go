package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hosting-portal/internal/api/dto"
	"github.com/spec-kit/hosting-portal/internal/auth"
	"github.com/spec-kit/hosting-portal/internal/domain"
	"github.com/spec-kit/hosting-portal/internal/query"
	"github.com/spec-kit/hosting-portal/internal/service"
	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

// TicketsHandler manages client ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		ClientInfo:  req.ClientInfo,
		SiteTag:     req.SiteTag,
	}
	ticket, err := h.service.Create(c.Context(), principal.UserID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	tickets, err := h.service.List(c.Context(), principal.UserID, principal.IsAdmin, parseTicketListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	ticket, err := h.service.Get(c.Context(), principal.UserID, principal.IsAdmin, c.Params("id"))
	if err != nil {
		return err
	}
	responses, err := h.service.Responses(c.Context(), principal.UserID, principal.IsAdmin, ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, responses)})
}

// AddResponse POST /tickets/:id/responses.
func (h *TicketsHandler) AddResponse(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	resp, err := h.service.AddResponse(c.Context(), principal.UserID, principal.IsAdmin, c.Params("id"), service.ResponseInput{
		Message:     req.Message,
		RefURL:      req.URL,
		RefURLLabel: req.URLLabel,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    ticketResponse(resp),
		"success": true,
	})
}

// ListResponses GET /tickets/:id/responses.
func (h *TicketsHandler) ListResponses(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	responses, err := h.service.Responses(c.Context(), principal.UserID, principal.IsAdmin, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponseResponse, 0, len(responses))
	for i := range responses {
		items = append(items, ticketResponse(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListInput {
	input := service.TicketListInput{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if c.Query("sort") == "asc" {
		input.SortDir = query.Ascending
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize
	return input
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             ticket.ID,
		ExternalKey:    ticket.ExternalKey,
		Subject:        ticket.Subject,
		Category:       ticket.Category,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		OwnerID:        ticket.OwnerID,
		OwnerName:      ticket.OwnerName,
		AssignedTo:     ticket.AssignedTo,
		LastUpdateNote: ticket.LastUpdateNote,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, responses []domain.TicketResponse) dto.TicketDetailResponse {
	items := make([]dto.TicketResponseResponse, 0, len(responses))
	for i := range responses {
		items = append(items, ticketResponse(&responses[i]))
	}
	return dto.TicketDetailResponse{
		ID:             ticket.ID,
		ExternalKey:    ticket.ExternalKey,
		Subject:        ticket.Subject,
		Description:    ticket.Description,
		Category:       ticket.Category,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		OwnerID:        ticket.OwnerID,
		OwnerName:      ticket.OwnerName,
		AssignedTo:     ticket.AssignedTo,
		Resolution:     ticket.Resolution,
		ClosedAt:       ticket.ClosedAt,
		ClosedBy:       ticket.ClosedBy,
		LastUpdateNote: ticket.LastUpdateNote,
		ClientInfo:     ticket.ClientInfo,
		SiteTag:        ticket.SiteTag,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		Responses:      items,
	}
}

func ticketResponse(resp *domain.TicketResponse) dto.TicketResponseResponse {
	return dto.TicketResponseResponse{
		ID:              resp.ID,
		TicketID:        resp.TicketID,
		AuthorName:      resp.AuthorName,
		AuthorEmail:     resp.AuthorEmail,
		IsAdminResponse: resp.IsAdminResponse,
		Message:         resp.Message,
		URL:             resp.RefURL,
		URLLabel:        resp.RefURLLabel,
		CreatedAt:       resp.CreatedAt,
	}
}
