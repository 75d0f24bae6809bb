package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// MemoryStore is an in-process persistence driver used when no database is
// configured. Ids and message order follow a per-table sequence, so listing
// order equals insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    []domain.User
	tickets  []domain.Ticket
	messages []domain.TicketMessage
	seq      struct{ user, ticket, message int64 }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Tickets returns the ticket repository view of the store.
func (s *MemoryStore) Tickets() TicketRepository { return memoryTickets{s} }

// Messages returns the message repository view of the store.
func (s *MemoryStore) Messages() TicketMessageRepository { return memoryMessages{s} }

func (s *MemoryStore) usernameLocked(id int64) string {
	for i := range s.users {
		if s.users[i].ID == id {
			return s.users[i].Username
		}
	}
	return ""
}

func (s *MemoryStore) ticketIndexLocked(id int64) int {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}
	r.s.seq.user++
	user.ID = r.s.seq.user
	user.CreatedAt = r.s.now()
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r memoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r memoryUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.Username == username })
}

func (r memoryUsers) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memoryTickets struct{ s *MemoryStore }

func (r memoryTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	username := r.s.usernameLocked(ticket.OwnerID)
	if username == "" {
		return pgx.ErrNoRows
	}
	r.s.seq.ticket++
	now := r.s.now()
	ticket.ID = r.s.seq.ticket
	ticket.OwnerUsername = username
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.s.tickets = append(r.s.tickets, cloneTicket(*ticket))
	return nil
}

func (r memoryTickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	idx := r.s.ticketIndexLocked(id)
	if idx < 0 {
		return nil, pgx.ErrNoRows
	}
	ticket := cloneTicket(r.s.tickets[idx])
	return &ticket, nil
}

func (r memoryTickets) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	ticket, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return ticket.OwnerID, nil
}

func (r memoryTickets) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error) {
	return r.list(ctx, func(t domain.Ticket) bool { return t.OwnerID == ownerID })
}

func (r memoryTickets) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, func(domain.Ticket) bool { return true })
}

func (r memoryTickets) list(ctx context.Context, match func(domain.Ticket) bool) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Ticket{}
	for _, t := range r.s.tickets {
		if match(t) {
			result = append(result, cloneTicket(t))
		}
	}
	return result, nil
}

func (r memoryTickets) Update(ctx context.Context, update domain.TicketUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idx := r.s.ticketIndexLocked(update.TicketID)
	if idx < 0 {
		return pgx.ErrNoRows
	}
	ticket := &r.s.tickets[idx]
	ticket.Status = update.Status
	ticket.FinalCategoryID = cloneInt(update.FinalCategoryID)
	ticket.AdminResponse = cloneString(update.AdminResponse)
	ticket.UpdatedAt = r.s.now()
	return nil
}

type memoryMessages struct{ s *MemoryStore }

func (r memoryMessages) Create(ctx context.Context, msg *domain.TicketMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.ticketIndexLocked(msg.TicketID) < 0 {
		return pgx.ErrNoRows
	}
	username := r.s.usernameLocked(msg.SenderID)
	if username == "" {
		return pgx.ErrNoRows
	}
	r.s.seq.message++
	msg.ID = r.s.seq.message
	msg.SenderUsername = username
	msg.CreatedAt = r.s.now()
	r.s.messages = append(r.s.messages, *msg)
	return nil
}

func (r memoryMessages) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.TicketMessage{}
	for _, m := range r.s.messages {
		if m.TicketID == ticketID {
			result = append(result, m)
		}
	}
	return result, nil
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.FinalCategoryID = cloneInt(t.FinalCategoryID)
	t.AdminResponse = cloneString(t.AdminResponse)
	return t
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
