package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/validation"
)

const previewLength = 120

// MessageService manages ticket threads. Only the ticket owner and
// administrators may read or write a thread.
type MessageService struct {
	messages   repository.TicketMessageRepository
	owners     *OwnerCache
	mediator   *auth.Mediator
	dispatcher events.Dispatcher
	validator  *validation.Validator
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// MessageDependencies bundles collaborators for message service.
type MessageDependencies struct {
	MessageRepo repository.TicketMessageRepository
	Owners      *OwnerCache
	Mediator    *auth.Mediator
	Dispatcher  events.Dispatcher
	Validator   *validation.Validator
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

type appendMessageInput struct {
	Text string `validate:"required,max=4000"`
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = validation.MustNew()
	}
	mediator := deps.Mediator
	if mediator == nil {
		mediator = auth.NewMediator()
	}
	return &MessageService{
		messages:   deps.MessageRepo,
		owners:     deps.Owners,
		mediator:   mediator,
		dispatcher: deps.Dispatcher,
		validator:  v,
		logger:     logger.With(zap.String("component", "message_service")),
		metrics:    deps.Metrics,
	}
}

// Append adds a message to the ticket thread. The sender role is taken from
// the caller's token snapshot. Blank text is rejected; text is stored as sent.
func (s *MessageService) Append(ctx context.Context, principal *auth.Principal, ticketID int64, text string) (*domain.TicketMessage, error) {
	if err := s.authorizeThread(ctx, principal, ticketID); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(appendMessageInput{Text: strings.TrimSpace(text)}); err != nil {
		return nil, err
	}

	msg := &domain.TicketMessage{
		TicketID:   ticketID,
		SenderID:   principal.UserID(),
		SenderRole: principal.Identity.Role,
		Text:       text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		if repository.IsNotFound(err) {
			return nil, ticketNotFound(ticketID)
		}
		return nil, apperrors.ToDomainError(err)
	}

	s.metrics.MessageAppended()
	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventTicketMessageAdded, ticketID, actorOf(principal), events.TicketMessageAddedPayload{
		MessageID:   msg.ID,
		SenderRole:  msg.SenderRole,
		BodyPreview: events.Preview(msg.Text, previewLength),
	}))
	return msg, nil
}

// List returns the thread oldest first. A ticket without messages yields an
// empty slice.
func (s *MessageService) List(ctx context.Context, principal *auth.Principal, ticketID int64) ([]domain.TicketMessage, error) {
	if err := s.authorizeThread(ctx, principal, ticketID); err != nil {
		return nil, err
	}
	thread, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return thread, nil
}

// authorizeThread rejects anonymous callers before revealing whether the
// ticket exists.
func (s *MessageService) authorizeThread(ctx context.Context, principal *auth.Principal, ticketID int64) error {
	if err := s.mediator.Authorize(principal, auth.CapabilityAuthenticated, 0); err != nil {
		return err
	}
	ownerID, err := s.owners.Owner(ctx, ticketID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ticketNotFound(ticketID)
		}
		return apperrors.ToDomainError(err)
	}
	return s.mediator.Authorize(principal, auth.CapabilityOwnerOrAdmin, ownerID)
}

func ticketNotFound(ticketID int64) error {
	return apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
}
