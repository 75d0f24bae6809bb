package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// ParseTicketStatus decodes a status name. Any of the three states may follow
// any other; only the value itself is checked.
func ParseTicketStatus(value string) (TicketStatus, error) {
	switch TicketStatus(value) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return TicketStatus(value), nil
	default:
		return "", fmt.Errorf("unknown ticket status %q", value)
	}
}

// DefaultUrgency is stored when the requester leaves urgency blank.
const DefaultUrgency = "Normal"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                  int64
	OwnerID             int64
	OwnerUsername       string
	Title               string
	Description         string
	Urgency             string
	Status              TicketStatus
	PredictedCategoryID int
	FinalCategoryID     *int
	AdminResponse       *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TicketUpdate carries the admin-owned fields of a ticket.
type TicketUpdate struct {
	TicketID        int64
	Status          TicketStatus
	FinalCategoryID *int
	AdminResponse   *string
}
