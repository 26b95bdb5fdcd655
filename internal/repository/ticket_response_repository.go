package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hosting-portal/internal/domain"
)

// TicketResponseRepository reads ticket threads. Responses are written
// only through TicketRepository.AppendResponse.
type TicketResponseRepository interface {
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error)
}

type ticketResponseRepository struct {
	pool *pgxpool.Pool
}

// NewTicketResponseRepository builds repository.
func NewTicketResponseRepository(pool *pgxpool.Pool) TicketResponseRepository {
	return &ticketResponseRepository{pool: pool}
}

func (r *ticketResponseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	const query = `
        SELECT id, ticket_id, author_name, author_email, is_admin_response, message, ref_url, ref_url_label, created_at
        FROM ticket_responses WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var resp domain.TicketResponse
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.AuthorName,
			&resp.AuthorEmail,
			&resp.IsAdminResponse,
			&resp.Message,
			&resp.RefURL,
			&resp.RefURLLabel,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}
