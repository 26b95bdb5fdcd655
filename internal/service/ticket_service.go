package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hosting-portal/internal/domain"
	"github.com/spec-kit/hosting-portal/internal/events"
	"github.com/spec-kit/hosting-portal/internal/query"
	"github.com/spec-kit/hosting-portal/internal/repository"
	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

// Fixed last-update notes written by the response side effect.
const (
	noteAgentResponse  = "New response from support agent"
	noteClientResponse = "New response from client"
)

var refURLPattern = regexp.MustCompile(`^(https?://)[\w.-]+\.[a-z]{2,}(/\S*)?$`)

// TicketService coordinates ticket workflows: creation, visibility
// scoping, admin updates and the response lifecycle side effects.
type TicketService struct {
	tickets    repository.TicketRepository
	responses  repository.TicketResponseRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.TicketResponseRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Category    string
	Priority    domain.TicketPriority
	ClientInfo  *string
	SiteTag     *string
}

// TicketUpdateInput is the admin patch for a ticket. Nil fields are
// left untouched.
type TicketUpdateInput struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssignedTo *string
	Note       *string
}

// TicketListInput captures listing parameters. Owner scoping for
// non-admin requesters is enforced here, not by the caller.
type TicketListInput struct {
	Search   string
	Status   string
	Priority string
	SortDir  query.Direction
	Limit    int
	Offset   int
}

// ResponseInput describes an add-response payload.
type ResponseInput struct {
	Message     string
	RefURL      *string
	RefURLLabel *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		responses:  deps.ResponseRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create opens a new ticket owned by ownerID. Status is always forced
// to open; category and priority receive defaults. A missing owner
// record is created best-effort first, tolerating provider/database
// drift; its failure never aborts ticket creation.
func (s *TicketService) Create(ctx context.Context, ownerID string, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", map[string]any{"field": "subject"})
	}
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority"})
	}

	s.ensureOwnerRecord(ctx, ownerID)

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		OwnerID:     ownerID,
		Subject:     subject,
		Description: description,
		Category:    category,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		ClientInfo:  input.ClientInfo,
		SiteTag:     input.SiteTag,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: ownerID},
		Payload: events.TicketCreatedPayload{
			Subject:  ticket.Subject,
			Category: ticket.Category,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// Get fetches a ticket visible to the requester. Unauthorized access
// reports not-found, never forbidden, so ticket existence does not
// leak across tenants.
func (s *TicketService) Get(ctx context.Context, requesterID string, requesterIsAdmin bool, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !requesterIsAdmin && ticket.OwnerID != requesterID {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// List returns tickets visible to the requester, filtered and ordered.
// Non-admin requesters are always scoped to their own tickets,
// whatever filters they pass. Search and filter values are pushed into
// the store so they narrow the result set before the page is cut; the
// in-memory pipeline then re-applies them and orders the page.
func (s *TicketService) List(ctx context.Context, requesterID string, requesterIsAdmin bool, input TicketListInput) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if !requesterIsAdmin {
		repoFilter.OwnerID = &requesterID
	}
	if term := strings.TrimSpace(input.Search); term != "" {
		repoFilter.SearchTerm = &term
	}
	if input.Status != "" && input.Status != query.All {
		repoFilter.Statuses = []domain.TicketStatus{domain.TicketStatus(input.Status)}
	}
	if input.Priority != "" && input.Priority != query.All {
		repoFilter.Priorities = []domain.TicketPriority{domain.TicketPriority(input.Priority)}
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	dir := input.SortDir
	if dir == "" {
		dir = query.Descending
	}
	return query.Apply(tickets, query.Options{
		Search:    input.Search,
		Status:    input.Status,
		Priority:  input.Priority,
		SortField: "dateOpened",
		SortDir:   dir,
	}), nil
}

// Update applies an admin patch to a ticket. Status, priority and
// assignment are admin-only; there is no transition graph, any status
// may follow any other. Closing records resolution, closed time and
// the closing actor in the same write.
func (s *TicketService) Update(ctx context.Context, requester *domain.User, requesterIsAdmin bool, ticketID string, patch TicketUpdateInput) (*domain.Ticket, error) {
	if !requesterIsAdmin {
		return nil, apperrors.NewForbidden("only administrators may update tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	oldStatus := ticket.Status
	if patch.Status != nil {
		if !domain.ValidStatus(*patch.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"field": "status"})
		}
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !domain.ValidPriority(*patch.Priority) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority"})
		}
		ticket.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		ticket.AssignedTo = patch.AssignedTo
	}
	if patch.Note != nil {
		ticket.LastUpdateNote = patch.Note
	}

	if patch.Status != nil && *patch.Status == domain.TicketStatusClosed {
		now := time.Now()
		ticket.ClosedAt = &now
		ticket.ClosedBy = closerName(requester)
		if patch.Note != nil {
			ticket.Resolution = patch.Note
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    actorFor(requester, requesterIsAdmin),
		Payload: events.TicketUpdatedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Note:      derefOrEmpty(patch.Note),
		},
	})
	return ticket, nil
}

// AddResponse appends a message to a ticket's thread and applies the
// lifecycle side effect: an admin response moves the ticket to
// in-progress, a client response moves it to open. The side effect
// fires regardless of prior status, so replying to a closed ticket
// implicitly reopens it. The insert and the status update are one
// transaction.
func (s *TicketService) AddResponse(ctx context.Context, authorID string, authorIsAdmin bool, ticketID string, input ResponseInput) (*domain.TicketResponse, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", map[string]any{"field": "message"})
	}

	refURL, refLabel, err := normalizeReference(input.RefURL, input.RefURLLabel)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !authorIsAdmin && ticket.OwnerID != authorID {
		return nil, apperrors.NewNotFound("ticket", nil)
	}

	name, email := s.resolveAuthor(ctx, authorID, authorIsAdmin)

	resp := &domain.TicketResponse{
		TicketID:        ticket.ID,
		AuthorName:      name,
		AuthorEmail:     email,
		IsAdminResponse: authorIsAdmin,
		Message:         message,
		RefURL:          refURL,
		RefURLLabel:     refLabel,
	}

	status := domain.TicketStatusOpen
	note := noteClientResponse
	if authorIsAdmin {
		status = domain.TicketStatusInProgress
		note = noteAgentResponse
	}

	if err := s.tickets.AppendResponse(ctx, resp, status, note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketResponseAdded,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: authorID, IsAdmin: authorIsAdmin},
		Payload: events.TicketResponseAddedPayload{
			ResponseID:      resp.ID,
			IsAdminResponse: resp.IsAdminResponse,
			MessagePreview:  stringPreview(resp.Message, 120),
		},
	})
	return resp, nil
}

// Responses returns a ticket's thread in chronological order, scoped
// to the ticket owner or an admin.
func (s *TicketService) Responses(ctx context.Context, requesterID string, requesterIsAdmin bool, ticketID string) ([]domain.TicketResponse, error) {
	if _, err := s.Get(ctx, requesterID, requesterIsAdmin, ticketID); err != nil {
		return nil, err
	}
	return s.responses.ListByTicket(ctx, ticketID)
}

// ensureOwnerRecord creates a minimal portal account when the identity
// provider knows a user the database does not. Best-effort: a failure
// here must not abort the ticket write it precedes.
func (s *TicketService) ensureOwnerRecord(ctx context.Context, ownerID string) {
	_, err := s.users.GetByID(ctx, ownerID)
	if err == nil {
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("owner lookup failed", zap.String("user_id", ownerID), zap.Error(err))
		return
	}
	user := &domain.User{
		ID:   ownerID,
		Role: domain.UserRoleClient,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Warn("lazy owner record creation failed", zap.String("user_id", ownerID), zap.Error(err))
	}
}

func (s *TicketService) resolveAuthor(ctx context.Context, authorID string, isAdmin bool) (name, email string) {
	fallback := domain.AuthorNameClient
	if isAdmin {
		fallback = domain.AuthorNameAgent
	}
	user, err := s.users.GetByID(ctx, authorID)
	if err != nil || user == nil {
		return fallback, ""
	}
	name = strings.TrimSpace(user.Name)
	if name == "" {
		name = fallback
	}
	return name, user.Email
}

// normalizeReference applies the URL pairing rule: a reference is
// persisted only when both URL and label are present; a URL without a
// label is dropped. A malformed URL is rejected outright.
func normalizeReference(rawURL, rawLabel *string) (*string, *string, error) {
	if rawURL == nil || strings.TrimSpace(*rawURL) == "" {
		return nil, nil, nil
	}
	u := strings.TrimSpace(*rawURL)
	if !refURLPattern.MatchString(u) {
		return nil, nil, apperrors.NewValidationError("reference url is not a valid http(s) url", map[string]any{"field": "url"})
	}
	if rawLabel == nil || strings.TrimSpace(*rawLabel) == "" {
		return nil, nil, nil
	}
	label := strings.TrimSpace(*rawLabel)
	return &u, &label, nil
}

func closerName(requester *domain.User) *string {
	if requester == nil {
		return nil
	}
	name := strings.TrimSpace(requester.Name)
	if name == "" {
		name = requester.ID
	}
	return &name
}

func actorFor(requester *domain.User, isAdmin bool) events.Actor {
	actor := events.Actor{IsAdmin: isAdmin}
	if requester != nil {
		actor.UserID = requester.ID
	}
	return actor
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "HP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
