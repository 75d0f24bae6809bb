package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketMessageRepository manages ticket thread messages. ListByTicket returns
// messages oldest first; ties on created_at are broken by id.
type TicketMessageRepository interface {
	Create(ctx context.Context, msg *domain.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketMessage, error)
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository builds repository.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

func (r *ticketMessageRepository) Create(ctx context.Context, msg *domain.TicketMessage) error {
	const query = `
        WITH inserted AS (
            INSERT INTO ticket_messages (ticket_id, sender_id, sender_role, message_text)
            VALUES ($1,$2,$3,$4)
            RETURNING id, sender_id, created_at
        )
        SELECT inserted.id, u.username, inserted.created_at
        FROM inserted JOIN users u ON u.id = inserted.sender_id`
	err := r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderID,
		msg.SenderRole,
		msg.Text,
	).Scan(&msg.ID, &msg.SenderUsername, &msg.CreatedAt)
	return translatePgError(err)
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketMessage, error) {
	const query = `
        SELECT m.id, m.ticket_id, m.sender_id, u.username, m.sender_role, m.message_text, m.created_at
        FROM ticket_messages m JOIN users u ON u.id = m.sender_id
        WHERE m.ticket_id=$1
        ORDER BY m.created_at ASC, m.id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketMessage{}
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.SenderUsername,
			&msg.SenderRole,
			&msg.Text,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
