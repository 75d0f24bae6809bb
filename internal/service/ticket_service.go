package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/classifier"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/validation"
)

// Messages returned to clients by the ticket flows.
const (
	MsgTicketCreated     = "ticket created and categorized"
	MsgTicketUpdated     = "ticket updated"
	MsgTicketNotUpdated  = "ticket not updated"
	MsgClassifierFailure = "category classifier unavailable"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	classifier classifier.Classifier
	mediator   *auth.Mediator
	owners     *OwnerCache
	dispatcher events.Dispatcher
	validator  *validation.Validator
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Classifier classifier.Classifier
	Mediator   *auth.Mediator
	Owners     *OwnerCache
	Dispatcher events.Dispatcher
	Validator  *validation.Validator
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"required"`
	Urgency     string `validate:"max=32"`
}

// UpdateTicketInput describes an administrator's triage decision.
type UpdateTicketInput struct {
	TicketID        int64  `validate:"gt=0"`
	Status          string `validate:"required,oneof=Open InProgress Closed"`
	FinalCategoryID *int   `validate:"omitempty,gt=0"`
	AdminResponse   *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
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
	return &TicketService{
		tickets:    deps.TicketRepo,
		classifier: deps.Classifier,
		mediator:   mediator,
		owners:     deps.Owners,
		dispatcher: deps.Dispatcher,
		validator:  v,
		logger:     logger.With(zap.String("component", "ticket_service")),
		metrics:    deps.Metrics,
	}
}

// Create files a ticket for the caller. The classifier is consulted exactly
// once; if it fails nothing is persisted.
func (s *TicketService) Create(ctx context.Context, principal *auth.Principal, input CreateTicketInput) (*domain.Ticket, error) {
	if err := s.mediator.Authorize(principal, auth.CapabilityAuthenticated, 0); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	categoryID, err := s.classifier.Predict(ctx, input.Title, input.Description)
	if err != nil {
		s.metrics.ClassifierFailed()
		s.logger.Warn("classifier failed", zap.Int64("user_id", principal.UserID()), zap.Error(err))
		return nil, apperrors.NewCollaboratorFailure("CLASSIFIER_UNAVAILABLE", MsgClassifierFailure, err)
	}

	urgency := strings.TrimSpace(input.Urgency)
	if urgency == "" {
		urgency = domain.DefaultUrgency
	}
	ticket := &domain.Ticket{
		OwnerID:             principal.UserID(),
		Title:               input.Title,
		Description:         input.Description,
		Urgency:             urgency,
		Status:              domain.TicketStatusOpen,
		PredictedCategoryID: categoryID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}

	if s.owners != nil {
		s.owners.Remember(ticket.ID, ticket.OwnerID)
	}
	s.metrics.TicketCreated()
	s.publish(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, actorOf(principal), events.TicketCreatedPayload{
		Title:               ticket.Title,
		Urgency:             ticket.Urgency,
		PredictedCategoryID: ticket.PredictedCategoryID,
	}))
	return ticket, nil
}

// ListForOwner returns the caller's own tickets in creation order.
func (s *TicketService) ListForOwner(ctx context.Context, principal *auth.Principal) ([]domain.Ticket, error) {
	if err := s.mediator.Authorize(principal, auth.CapabilityAuthenticated, 0); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByOwner(ctx, principal.UserID())
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return tickets, nil
}

// ListAll returns every ticket. Admin only.
func (s *TicketService) ListAll(ctx context.Context, principal *auth.Principal) ([]domain.Ticket, error) {
	if err := s.mediator.Authorize(principal, auth.CapabilityAdmin, 0); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return tickets, nil
}

// GetByID returns a ticket to any authenticated caller. Ownership is not
// checked here, unlike the message thread.
func (s *TicketService) GetByID(ctx context.Context, principal *auth.Principal, id int64) (*domain.Ticket, error) {
	if err := s.mediator.Authorize(principal, auth.CapabilityAuthenticated, 0); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": id})
		}
		return nil, apperrors.ToDomainError(err)
	}
	return ticket, nil
}

// Update overwrites status, final category and admin response. Any status may
// follow any other. Admin only.
func (s *TicketService) Update(ctx context.Context, principal *auth.Principal, input UpdateTicketInput) error {
	if err := s.mediator.Authorize(principal, auth.CapabilityAdmin, 0); err != nil {
		return err
	}
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	status, err := domain.ParseTicketStatus(input.Status)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	update := domain.TicketUpdate{
		TicketID:        input.TicketID,
		Status:          status,
		FinalCategoryID: input.FinalCategoryID,
		AdminResponse:   input.AdminResponse,
	}
	if err := s.tickets.Update(ctx, update); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewDeclined("TICKET_NOT_UPDATED", MsgTicketNotUpdated)
		}
		return apperrors.ToDomainError(err)
	}

	s.metrics.TicketUpdated()
	s.publish(ctx, events.NewEvent(events.EventTicketUpdated, input.TicketID, actorOf(principal), events.TicketUpdatedPayload{
		Status:           status,
		FinalCategoryID:  input.FinalCategoryID,
		HasAdminResponse: input.AdminResponse != nil && *input.AdminResponse != "",
	}))
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func actorOf(principal *auth.Principal) events.Actor {
	return events.Actor{UserID: principal.UserID(), Role: principal.Identity.Role}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
