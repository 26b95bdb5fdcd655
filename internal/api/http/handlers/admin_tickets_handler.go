package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hosting-portal/internal/api/dto"
	"github.com/spec-kit/hosting-portal/internal/auth"
	"github.com/spec-kit/hosting-portal/internal/service"
	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

// AdminTicketsHandler manages admin console ticket endpoints. Routes
// are mounted behind RequireAdmin; handlers still pass the principal's
// admin flag down so the service re-checks field-level permissions.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// ListTickets GET /admin/tickets. Admin scope spans all owners.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
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

// UpdateTicket PATCH /admin/tickets/:id.
func (h *AdminTicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	ticketID := c.Params("id")
	if ticketID == "" {
		return apperrors.NewValidationError("ticket id required", nil)
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Update(c.Context(), principal.User, principal.IsAdmin, ticketID, service.TicketUpdateInput{
		Status:     req.Status,
		Priority:   req.Priority,
		AssignedTo: req.AssignedTo,
		Note:       req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}
