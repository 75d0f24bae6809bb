package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Lists are returned in
// creation order.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetOwnerID(ctx context.Context, id int64) (int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	Update(ctx context.Context, update domain.TicketUpdate) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
        t.id, t.owner_id, u.username, t.title, t.description, t.urgency, t.status,
        t.predicted_category_id, t.final_category_id, t.admin_response, t.created_at, t.updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_id, title, description, urgency, status, predicted_category_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Title,
		ticket.Description,
		ticket.Urgency,
		ticket.Status,
		ticket.PredictedCategoryID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return translatePgError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + `
        FROM tickets t JOIN users u ON u.id = t.owner_id
        WHERE t.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	const query = `SELECT owner_id FROM tickets WHERE id=$1`
	var ownerID int64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&ownerID); err != nil {
		return 0, err
	}
	return ownerID, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + `
        FROM tickets t JOIN users u ON u.id = t.owner_id
        WHERE t.owner_id=$1
        ORDER BY t.created_at ASC, t.id ASC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + `
        FROM tickets t JOIN users u ON u.id = t.owner_id
        ORDER BY t.created_at ASC, t.id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Update(ctx context.Context, update domain.TicketUpdate) error {
	const query = `
        UPDATE tickets SET status=$1, final_category_id=$2, admin_response=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		update.Status,
		update.FinalCategoryID,
		update.AdminResponse,
		update.TicketID,
	)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.OwnerUsername,
		&ticket.Title,
		&ticket.Description,
		&ticket.Urgency,
		&ticket.Status,
		&ticket.PredictedCategoryID,
		&ticket.FinalCategoryID,
		&ticket.AdminResponse,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
