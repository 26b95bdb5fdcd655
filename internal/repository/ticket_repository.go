package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hosting-portal/internal/domain"
)

// TicketFilter captures listing parameters. OwnerID is forced by the
// service layer for non-admin requesters.
type TicketFilter struct {
	OwnerID    *string
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// AppendResponse inserts a response and applies the parent
	// ticket's status/note side effect in one transaction. Both
	// writes commit or neither does.
	AppendResponse(ctx context.Context, resp *domain.TicketResponse, status domain.TicketStatus, note string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.external_key, t.owner_id, t.subject, t.description, t.category,
               t.status, t.priority, t.assigned_to, t.resolution, t.closed_at, t.closed_by,
               t.last_update_note, t.client_info, t.site_tag, t.created_at, t.updated_at,
               COALESCE(u.name, ''), COALESCE(u.email, '')`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, owner_id, subject, description, category, status, priority, client_info, site_tag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.OwnerID,
		ticket.Subject,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.ClientInfo,
		ticket.SiteTag,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, assigned_to=$3, resolution=$4,
            closed_at=$5, closed_by=$6, last_update_note=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.Resolution,
		ticket.ClosedAt,
		ticket.ClosedBy,
		ticket.LastUpdateNote,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `
        SELECT ` + ticketColumns + `
        FROM tickets t LEFT JOIN users u ON u.id = t.owner_id
        WHERE t.id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketScanTargets(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + `
             FROM tickets t LEFT JOIN users u ON u.id = t.owner_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("t.owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.subject) LIKE %s OR LOWER(t.description) LIKE %s OR LOWER(COALESCE(u.name,'')) LIKE %s OR LOWER(COALESCE(u.email,'')) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) AppendResponse(ctx context.Context, resp *domain.TicketResponse, status domain.TicketStatus, note string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertQuery = `
        INSERT INTO ticket_responses (ticket_id, author_name, author_email, is_admin_response, message, ref_url, ref_url_label)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertQuery,
		resp.TicketID,
		resp.AuthorName,
		resp.AuthorEmail,
		resp.IsAdminResponse,
		resp.Message,
		resp.RefURL,
		resp.RefURLLabel,
	).Scan(&resp.ID, &resp.CreatedAt); err != nil {
		return err
	}

	const updateQuery = `
        UPDATE tickets SET status=$1, last_update_note=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := tx.Exec(ctx, updateQuery, status, note, resp.TicketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketScanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func ticketScanTargets(t *domain.Ticket) []any {
	return []any{
		&t.ID,
		&t.ExternalKey,
		&t.OwnerID,
		&t.Subject,
		&t.Description,
		&t.Category,
		&t.Status,
		&t.Priority,
		&t.AssignedTo,
		&t.Resolution,
		&t.ClosedAt,
		&t.ClosedBy,
		&t.LastUpdateNote,
		&t.ClientInfo,
		&t.SiteTag,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.OwnerName,
		&t.OwnerEmail,
	}
}
