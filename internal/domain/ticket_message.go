package domain

import "time"

// TicketMessage captures one entry of a ticket thread. Messages are
// append-only; SenderRole is the role the sender held when writing.
type TicketMessage struct {
	ID             int64
	TicketID       int64
	SenderID       int64
	SenderUsername string
	SenderRole     Role
	Text           string
	CreatedAt      time.Time
}
