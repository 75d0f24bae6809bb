package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// MessagesHandler exposes ticket threads.
type MessagesHandler struct {
	service *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{service: messageService}
}

// ListMessages GET /tickets/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	thread, err := h.service.List(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketMessageResponses(thread)})
}

// AppendMessage POST /tickets/:id/messages.
func (h *MessagesHandler) AppendMessage(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AppendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID != id {
		return apperrors.NewDeclined("TICKET_ID_MISMATCH", "ticket id in path and body differ")
	}

	msg, err := h.service.Append(c.UserContext(), principal, id, req.MessageText)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketMessageResponse(msg)})
}
