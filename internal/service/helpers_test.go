package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/classifier"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const testSecret = "service-test-secret-service-test-secret"

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *repository.MemoryStore
	tokens     *auth.TokenManager
	dispatcher *recordingDispatcher
	owners     *OwnerCache
	auth       *AuthService
	tickets    *TicketService
	messages   *MessageService
}

func newFixture(t *testing.T, predict classifier.Func) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	tokens := auth.NewTokenManager(testSecret, "HelpdeskAPI", "HelpdeskUsers", 24*time.Hour)
	dispatcher := &recordingDispatcher{}
	mediator := auth.NewMediator()
	owners := NewOwnerCache(store.Tickets(), 16, time.Minute, nil)
	if predict == nil {
		predict = func(context.Context, string, string) (int, error) { return classifier.CategoryNetwork, nil }
	}

	return &fixture{
		store:      store,
		tokens:     tokens,
		dispatcher: dispatcher,
		owners:     owners,
		auth: NewAuthService(AuthDependencies{
			UserRepo:   store.Users(),
			Tokens:     tokens,
			BcryptCost: 4,
		}),
		tickets: NewTicketService(TicketDependencies{
			TicketRepo: store.Tickets(),
			Classifier: predict,
			Mediator:   mediator,
			Owners:     owners,
			Dispatcher: dispatcher,
		}),
		messages: NewMessageService(MessageDependencies{
			MessageRepo: store.Messages(),
			Owners:      owners,
			Mediator:    mediator,
			Dispatcher:  dispatcher,
		}),
	}
}

// addUser stores an account directly, bypassing registration so admins can
// be created.
func (f *fixture) addUser(t *testing.T, username string, role domain.Role) *auth.Principal {
	t.Helper()
	user := domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	if err := f.store.Users().Create(context.Background(), &user); err != nil {
		t.Fatalf("add user %s: %v", username, err)
	}
	return &auth.Principal{Identity: domain.Identity{UserID: user.ID, DisplayName: user.Username, Role: user.Role}}
}

func (f *fixture) createTicket(t *testing.T, owner *auth.Principal, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.Create(context.Background(), owner, CreateTicketInput{Title: title, Description: "details"})
	if err != nil {
		t.Fatalf("create ticket %q: %v", title, err)
	}
	return ticket
}

func assertErrorCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	de := apperrors.ToDomainError(err)
	if de.Code != code || de.HTTPStatus != status {
		t.Fatalf("expected %s/%d, got %s/%d (%v)", code, status, de.Code, de.HTTPStatus, err)
	}
}
