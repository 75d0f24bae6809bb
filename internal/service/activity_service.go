package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// ActivityService writes an audit line for every domain event.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("component", "activity")),
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleTicketCreated)
	a.dispatcher.Subscribe(events.EventTicketUpdated, a.handleTicketUpdated)
	a.dispatcher.Subscribe(events.EventTicketMessageAdded, a.handleTicketMessageAdded)
}

func (a *ActivityService) handleTicketCreated(_ context.Context, event events.Event) error {
	a.logger.Info("TicketCreated", a.fields(event)...)
	return nil
}

func (a *ActivityService) handleTicketUpdated(_ context.Context, event events.Event) error {
	a.logger.Info("TicketUpdated", a.fields(event)...)
	return nil
}

func (a *ActivityService) handleTicketMessageAdded(_ context.Context, event events.Event) error {
	a.logger.Info("TicketMessageAdded", a.fields(event)...)
	return nil
}

func (a *ActivityService) fields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("actor_id", event.Actor.UserID),
		zap.String("actor_role", string(event.Actor.Role)),
		zap.Any("payload", event.Payload),
	}
}
