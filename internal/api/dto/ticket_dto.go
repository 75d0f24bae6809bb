package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
}

// CreateTicketResponse reports the new id and the predicted category.
type CreateTicketResponse struct {
	Message           string `json:"message"`
	TicketID          int64  `json:"ticketId"`
	PredictedCategory int    `json:"predictedCategory"`
}

// UpdateTicketRequest payload for administrators.
type UpdateTicketRequest struct {
	TicketID        int64   `json:"ticketId"`
	Status          string  `json:"status"`
	FinalCategoryID *int    `json:"finalCategoryId"`
	AdminResponse   *string `json:"adminResponse"`
}

// TicketSummary is a list row.
type TicketSummary struct {
	TicketID            int64               `json:"ticketId"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Status              domain.TicketStatus `json:"status"`
	Urgency             string              `json:"urgency"`
	CreatedAt           time.Time           `json:"createdAt"`
	PredictedCategoryID int                 `json:"predictedCategoryId"`
	FinalCategoryID     *int                `json:"finalCategoryId"`
	UserName            string              `json:"userName"`
}

// TicketDetail provides full ticket info.
type TicketDetail struct {
	TicketSummary
	OwnerID       int64     `json:"ownerId"`
	AdminResponse *string   `json:"adminResponse"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AppendMessageRequest payload. TicketID must repeat the path id.
type AppendMessageRequest struct {
	TicketID    int64  `json:"ticketId"`
	MessageText string `json:"messageText"`
}

// TicketMessageResponse is one thread entry.
type TicketMessageResponse struct {
	MessageID   int64       `json:"messageId"`
	TicketID    int64       `json:"ticketId"`
	SenderID    int64       `json:"senderId"`
	SenderName  string      `json:"senderName"`
	SenderRole  domain.Role `json:"senderRole"`
	MessageText string      `json:"messageText"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// NewTicketSummary maps a ticket to a list row.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		TicketID:            t.ID,
		Title:               t.Title,
		Description:         t.Description,
		Status:              t.Status,
		Urgency:             t.Urgency,
		CreatedAt:           t.CreatedAt,
		PredictedCategoryID: t.PredictedCategoryID,
		FinalCategoryID:     t.FinalCategoryID,
		UserName:            t.OwnerUsername,
	}
}

// NewTicketSummaries maps a list, never returning nil.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketSummary(&tickets[i]))
	}
	return items
}

// NewTicketDetail maps a ticket to its detail view.
func NewTicketDetail(t *domain.Ticket) TicketDetail {
	return TicketDetail{
		TicketSummary: NewTicketSummary(t),
		OwnerID:       t.OwnerID,
		AdminResponse: t.AdminResponse,
		UpdatedAt:     t.UpdatedAt,
	}
}

// NewTicketMessageResponse maps a thread entry.
func NewTicketMessageResponse(m *domain.TicketMessage) TicketMessageResponse {
	return TicketMessageResponse{
		MessageID:   m.ID,
		TicketID:    m.TicketID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderUsername,
		SenderRole:  m.SenderRole,
		MessageText: m.Text,
		CreatedAt:   m.CreatedAt,
	}
}

// NewTicketMessageResponses maps a thread, never returning nil.
func NewTicketMessageResponses(msgs []domain.TicketMessage) []TicketMessageResponse {
	items := make([]TicketMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, NewTicketMessageResponse(&msgs[i]))
	}
	return items
}
