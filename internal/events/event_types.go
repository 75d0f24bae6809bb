package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketUpdated      EventType = "ticket_updated"
	EventTicketMessageAdded EventType = "ticket_message_added"
)

// AllEventTypes lists every event the services publish.
func AllEventTypes() []EventType {
	return []EventType{EventTicketCreated, EventTicketUpdated, EventTicketMessageAdded}
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"userId"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticketId"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, ticketID int64, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title               string `json:"title"`
	Urgency             string `json:"urgency"`
	PredictedCategoryID int    `json:"predictedCategoryId"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Status           domain.TicketStatus `json:"status"`
	FinalCategoryID  *int                `json:"finalCategoryId,omitempty"`
	HasAdminResponse bool                `json:"hasAdminResponse"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   int64       `json:"messageId"`
	SenderRole  domain.Role `json:"senderRole"`
	BodyPreview string      `json:"bodyPreview"`
}

// Preview truncates text to at most n runes for event payloads.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
