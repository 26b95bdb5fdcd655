package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hosting-portal/internal/domain"
	"github.com/spec-kit/hosting-portal/internal/repository"
	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

// memStore backs all three repository interfaces for service tests.
type memStore struct {
	users          map[string]*domain.User
	tickets        map[string]*domain.Ticket
	responses      map[string][]domain.TicketResponse
	clock          time.Time
	seq            int
	failUserCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*domain.User),
		tickets:   make(map[string]*domain.Ticket),
		responses: make(map[string][]domain.TicketResponse),
		clock:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) Create(_ context.Context, user *domain.User) error {
	if m.failUserCreate {
		return errors.New("users table unavailable")
	}
	now := m.tick()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return nil
}

func (m *memStore) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memTicketRepo struct{ store *memStore }

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	now := r.store.tick()
	ticket.ID = r.store.nextID("tkt")
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	copied := *ticket
	r.store.tickets[ticket.ID] = &copied
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.store.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = r.store.tick()
	copied := *ticket
	r.store.tickets[ticket.ID] = &copied
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

// ListWithFilter mimics the SQL path: filters narrow the set first,
// then the newest-first ordering and LIMIT/OFFSET cut the page.
func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.store.tickets {
		if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !priorityIn(filter.Priorities, ticket.Priority) {
			continue
		}
		copied := *ticket
		if owner, ok := r.store.users[ticket.OwnerID]; ok {
			copied.OwnerName = owner.Name
			copied.OwnerEmail = owner.Email
		}
		if filter.SearchTerm != nil && !searchMatches(&copied, *filter.SearchTerm) {
			continue
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func statusIn(set []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

func priorityIn(set []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}

func searchMatches(t *domain.Ticket, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	for _, field := range []string{t.Subject, t.Description, t.OwnerName, t.OwnerEmail} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (r *memTicketRepo) AppendResponse(_ context.Context, resp *domain.TicketResponse, status domain.TicketStatus, note string) error {
	ticket, ok := r.store.tickets[resp.TicketID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := r.store.tick()
	resp.ID = r.store.nextID("rsp")
	resp.CreatedAt = now
	r.store.responses[resp.TicketID] = append(r.store.responses[resp.TicketID], *resp)
	ticket.Status = status
	ticket.LastUpdateNote = &note
	ticket.UpdatedAt = now
	return nil
}

type memResponseRepo struct{ store *memStore }

func (r *memResponseRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketResponse, error) {
	out := make([]domain.TicketResponse, len(r.store.responses[ticketID]))
	copy(out, r.store.responses[ticketID])
	return out, nil
}

func newTestService(store *memStore) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:   &memTicketRepo{store: store},
		ResponseRepo: &memResponseRepo{store: store},
		UserRepo:     store,
		Logger:       zap.NewNop(),
	})
}

func strptr(s string) *string { return &s }

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func priorityPtr(p domain.TicketPriority) *domain.TicketPriority { return &p }

func TestCreateAppliesDefaults(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	ticket, err := svc.Create(context.Background(), "client-1", TicketCreateInput{
		Subject:     "Can't log in",
		Description: "Session expired repeatedly",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %q, want open", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("priority = %q, want medium", ticket.Priority)
	}
	if ticket.Category != domain.DefaultCategory {
		t.Fatalf("category = %q, want general", ticket.Category)
	}
	if ticket.OwnerID != "client-1" {
		t.Fatalf("owner = %q", ticket.OwnerID)
	}
	if !strings.HasPrefix(ticket.ExternalKey, "HP-") {
		t.Fatalf("external key = %q", ticket.ExternalKey)
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	cases := []TicketCreateInput{
		{Subject: "", Description: "something"},
		{Subject: "   ", Description: "something"},
		{Subject: "something", Description: ""},
		{Subject: "something", Description: "  \t "},
	}
	for _, input := range cases {
		if _, err := svc.Create(context.Background(), "client-1", input); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Fatalf("input %+v: got %v, want validation error", input, err)
		}
	}
	if len(store.tickets) != 0 {
		t.Fatalf("validation failures must not create tickets, have %d", len(store.tickets))
	}
}

func TestCreateLazilyProvisionsOwnerRecord(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	if _, err := svc.Create(context.Background(), "new-user", TicketCreateInput{
		Subject:     "s",
		Description: "d",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, ok := store.users["new-user"]
	if !ok {
		t.Fatalf("expected owner record to be created")
	}
	if user.Role != domain.UserRoleClient || user.IsAdmin {
		t.Fatalf("lazy record must be a plain client, got role=%q isAdmin=%v", user.Role, user.IsAdmin)
	}
}

func TestCreateSurvivesOwnerProvisioningFailure(t *testing.T) {
	store := newMemStore()
	store.failUserCreate = true
	svc := newTestService(store)

	ticket, err := svc.Create(context.Background(), "new-user", TicketCreateInput{
		Subject:     "s",
		Description: "d",
	})
	if err != nil {
		t.Fatalf("ticket creation must proceed past a failed user write: %v", err)
	}
	if _, ok := store.tickets[ticket.ID]; !ok {
		t.Fatalf("ticket was not persisted")
	}
	if len(store.users) != 0 {
		t.Fatalf("no user record should exist")
	}
}

func TestGetConflatesForbiddenIntoNotFound(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "owner-1", TicketCreateInput{Subject: "s", Description: "d"})

	if _, err := svc.Get(context.Background(), "other-user", false, ticket.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("cross-tenant read must report not-found, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner-1", false, ticket.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "admin-1", true, ticket.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner-1", false, "missing"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("missing ticket: got %v", err)
	}
}

func TestListForcesOwnerScopeForNonAdmins(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	mine, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "mine", Description: "d"})
	svc.Create(context.Background(), "u2", TicketCreateInput{Subject: "theirs", Description: "d"}) //nolint:errcheck

	tickets, err := svc.List(context.Background(), "u1", false, TicketListInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != mine.ID {
		t.Fatalf("non-admin scope leaked: %+v", tickets)
	}

	all, err := svc.List(context.Background(), "admin", true, TicketListInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin should see all tickets, got %d", len(all))
	}
}

func TestListAppliesQueryEngine(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "DNS broken", Description: "zone"})     //nolint:errcheck
	svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "Billing issue", Description: "plan"}) //nolint:errcheck

	tickets, err := svc.List(context.Background(), "u1", false, TicketListInput{Search: "dns"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Subject != "DNS broken" {
		t.Fatalf("search filter: %+v", tickets)
	}

	tickets, err = svc.List(context.Background(), "u1", false, TicketListInput{Status: "closed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 0 {
		t.Fatalf("status filter should exclude open tickets, got %d", len(tickets))
	}
}

// A match older than the default page must still be found: filters
// have to narrow the stored set before LIMIT/OFFSET cut it, not after.
func TestListFiltersNarrowBeforePagination(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	oldest, err := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "DNS broken", Description: "zone"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 55; i++ {
		if _, err := svc.Create(context.Background(), "u1", TicketCreateInput{
			Subject:     fmt.Sprintf("routine request %d", i),
			Description: "noise",
		}); err != nil {
			t.Fatalf("create filler %d: %v", i, err)
		}
	}

	tickets, err := svc.List(context.Background(), "u1", false, TicketListInput{Search: "dns"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != oldest.ID {
		t.Fatalf("search must reach past the first page, got %d tickets", len(tickets))
	}

	admin := &domain.User{ID: "adm-1", IsAdmin: true}
	if _, err := svc.Update(context.Background(), admin, true, oldest.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusClosed),
	}); err != nil {
		t.Fatalf("close: %v", err)
	}
	closed, err := svc.List(context.Background(), "adm-1", true, TicketListInput{Status: "closed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(closed) != 1 || closed[0].ID != oldest.ID {
		t.Fatalf("status filter must reach past the first page, got %d tickets", len(closed))
	}
}

func TestUpdateRequiresAdmin(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})

	_, err := svc.Update(context.Background(), &domain.User{ID: "u1"}, false, ticket.ID, TicketUpdateInput{
		Priority: priorityPtr(domain.TicketPriorityHigh),
	})
	if !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("non-admin update: got %v, want forbidden", err)
	}
	if store.tickets[ticket.ID].Priority != domain.TicketPriorityMedium {
		t.Fatalf("forbidden update must not mutate the ticket")
	}
}

func TestUpdateCloseRecordsResolution(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})
	admin := &domain.User{ID: "adm-1", Name: "Robin", IsAdmin: true}

	updated, err := svc.Update(context.Background(), admin, true, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusClosed),
		Note:   strptr("resolved by restarting the instance"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.TicketStatusClosed {
		t.Fatalf("status = %q", updated.Status)
	}
	if updated.ClosedAt == nil || updated.ClosedBy == nil || *updated.ClosedBy != "Robin" {
		t.Fatalf("close metadata missing: %+v", updated)
	}
	if updated.Resolution == nil || *updated.Resolution != "resolved by restarting the instance" {
		t.Fatalf("resolution not carried from note: %+v", updated.Resolution)
	}
}

func TestUpdateAllowsAnyStatusTransition(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})
	admin := &domain.User{ID: "adm-1", IsAdmin: true}

	if _, err := svc.Update(context.Background(), admin, true, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusClosed),
	}); err != nil {
		t.Fatalf("close: %v", err)
	}
	// closed tickets may be reopened by explicit admin update
	updated, err := svc.Update(context.Background(), admin, true, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusOpen),
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if updated.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %q, want open", updated.Status)
	}
}

func TestUpdateRejectsUnknownEnumValues(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})
	admin := &domain.User{ID: "adm-1", IsAdmin: true}

	bogus := domain.TicketStatus("escalated")
	if _, err := svc.Update(context.Background(), admin, true, ticket.ID, TicketUpdateInput{Status: &bogus}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("unknown status: got %v", err)
	}
}

func TestAddResponseValidatesMessage(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})

	if _, err := svc.AddResponse(context.Background(), "u1", false, ticket.ID, ResponseInput{Message: "   \t  "}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("whitespace message: got %v", err)
	}
	if len(store.responses[ticket.ID]) != 0 {
		t.Fatalf("no response should be stored")
	}
}

func TestAddResponseScopesToOwner(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})

	if _, err := svc.AddResponse(context.Background(), "intruder", false, ticket.ID, ResponseInput{Message: "hi"}); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("cross-tenant response: got %v, want not-found", err)
	}
	if _, err := svc.AddResponse(context.Background(), "adm", true, ticket.ID, ResponseInput{Message: "hi"}); err != nil {
		t.Fatalf("admin may respond to any ticket: %v", err)
	}
}

func TestAddResponseStatusSideEffect(t *testing.T) {
	cases := []struct {
		name       string
		prior      domain.TicketStatus
		asAdmin    bool
		wantStatus domain.TicketStatus
		wantNote   string
	}{
		{"client reply to open", domain.TicketStatusOpen, false, domain.TicketStatusOpen, noteClientResponse},
		{"client reply reopens closed", domain.TicketStatusClosed, false, domain.TicketStatusOpen, noteClientResponse},
		{"admin reply to open", domain.TicketStatusOpen, true, domain.TicketStatusInProgress, noteAgentResponse},
		{"admin reply reopens closed", domain.TicketStatusClosed, true, domain.TicketStatusInProgress, noteAgentResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store)
			ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})
			store.tickets[ticket.ID].Status = tc.prior

			author := "u1"
			if tc.asAdmin {
				author = "adm"
			}
			resp, err := svc.AddResponse(context.Background(), author, tc.asAdmin, ticket.ID, ResponseInput{Message: "update"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.IsAdminResponse != tc.asAdmin {
				t.Fatalf("isAdminResponse = %v", resp.IsAdminResponse)
			}
			got := store.tickets[ticket.ID]
			if got.Status != tc.wantStatus {
				t.Fatalf("status = %q, want %q", got.Status, tc.wantStatus)
			}
			if got.LastUpdateNote == nil || *got.LastUpdateNote != tc.wantNote {
				t.Fatalf("note = %v, want %q", got.LastUpdateNote, tc.wantNote)
			}
		})
	}
}

func TestAddResponseAuthorDefaulting(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})

	// no name on file for either author
	clientResp, err := svc.AddResponse(context.Background(), "u1", false, ticket.ID, ResponseInput{Message: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clientResp.AuthorName != domain.AuthorNameClient {
		t.Fatalf("client author = %q", clientResp.AuthorName)
	}
	adminResp, err := svc.AddResponse(context.Background(), "adm", true, ticket.ID, ResponseInput{Message: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adminResp.AuthorName != domain.AuthorNameAgent {
		t.Fatalf("admin author = %q", adminResp.AuthorName)
	}

	// named user wins over the fallback
	store.users["u1"].Name = "Dana"
	store.users["u1"].Email = "dana@example.com"
	named, err := svc.AddResponse(context.Background(), "u1", false, ticket.ID, ResponseInput{Message: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if named.AuthorName != "Dana" || named.AuthorEmail != "dana@example.com" {
		t.Fatalf("author = %q <%s>", named.AuthorName, named.AuthorEmail)
	}
}

func TestAddResponseReferenceURLRules(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})

	if _, err := svc.AddResponse(context.Background(), "u1", false, ticket.ID, ResponseInput{
		Message: "ok",
		RefURL:  strptr("not-a-url"),
	}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("malformed url: got %v", err)
	}

	// URL without a label is dropped entirely
	resp, err := svc.AddResponse(context.Background(), "u1", false, ticket.ID, ResponseInput{
		Message: "ok",
		RefURL:  strptr("https://x.com"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RefURL != nil || resp.RefURLLabel != nil {
		t.Fatalf("url without label must not persist: %+v", resp)
	}

	resp, err = svc.AddResponse(context.Background(), "u1", false, ticket.ID, ResponseInput{
		Message:     "ok",
		RefURL:      strptr("https://status.example.com/incident/42"),
		RefURLLabel: strptr("status page"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RefURL == nil || *resp.RefURL != "https://status.example.com/incident/42" {
		t.Fatalf("url = %v", resp.RefURL)
	}
	if resp.RefURLLabel == nil || *resp.RefURLLabel != "status page" {
		t.Fatalf("label = %v", resp.RefURLLabel)
	}
}

func TestAddResponseMissingTicket(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	if _, err := svc.AddResponse(context.Background(), "u1", false, "nope", ResponseInput{Message: "m"}); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("missing ticket: got %v", err)
	}
}

func TestResponsesAreChronologicalAndScoped(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ticket, _ := svc.Create(context.Background(), "u1", TicketCreateInput{Subject: "s", Description: "d"})

	svc.AddResponse(context.Background(), "u1", false, ticket.ID, ResponseInput{Message: "first"}) //nolint:errcheck
	svc.AddResponse(context.Background(), "adm", true, ticket.ID, ResponseInput{Message: "second"}) //nolint:errcheck

	thread, err := svc.Responses(context.Background(), "u1", false, ticket.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(thread) != 2 || thread[0].Message != "first" || thread[1].Message != "second" {
		t.Fatalf("thread order: %+v", thread)
	}
	if !thread[0].CreatedAt.Before(thread[1].CreatedAt) {
		t.Fatalf("timestamps out of order")
	}

	if _, err := svc.Responses(context.Background(), "intruder", false, ticket.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("cross-tenant thread read: got %v", err)
	}
}

// Mirrors the full client/admin exchange: create, admin moves to
// in-progress, client reply forces the ticket back to open.
func TestTicketLifecycleScenario(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	admin := &domain.User{ID: "adm-1", Name: "Robin", IsAdmin: true}

	ticket, err := svc.Create(context.Background(), "client-c", TicketCreateInput{
		Subject:     "Can't log in",
		Description: "Session expired repeatedly",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen || ticket.Priority != domain.TicketPriorityMedium || ticket.Category != "general" {
		t.Fatalf("creation defaults: %+v", ticket)
	}

	if _, err := svc.Update(context.Background(), admin, true, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusInProgress),
	}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if store.tickets[ticket.ID].Status != domain.TicketStatusInProgress {
		t.Fatalf("status after admin update: %q", store.tickets[ticket.ID].Status)
	}

	resp, err := svc.AddResponse(context.Background(), "client-c", false, ticket.ID, ResponseInput{Message: "Still broken"})
	if err != nil {
		t.Fatalf("client response: %v", err)
	}
	if resp.IsAdminResponse {
		t.Fatalf("client response flagged as admin")
	}
	if store.tickets[ticket.ID].Status != domain.TicketStatusOpen {
		t.Fatalf("client reply must force status open, got %q", store.tickets[ticket.ID].Status)
	}
}
