package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func seedUser(t *testing.T, store *MemoryStore, username string) domain.User {
	t.Helper()
	user := domain.User{Username: username, Email: username + "@x.io", PasswordHash: "h", Role: domain.RoleStandardUser}
	if err := store.Users().Create(context.Background(), &user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func TestMemoryUsersUniqueness(t *testing.T) {
	store := NewMemoryStore()
	seedUser(t, store, "alice")

	tests := []struct {
		name string
		user domain.User
	}{
		{"same username", domain.User{Username: "alice", Email: "other@x.io"}},
		{"same email different case", domain.User{Username: "alice2", Email: "ALICE@x.io"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			err := store.Users().Create(context.Background(), &u)
			if !errors.Is(err, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
		})
	}

	if _, err := store.Users().GetByUsername(context.Background(), "bob"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryTicketsLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	for _, owner := range []int64{alice.ID, bob.ID, alice.ID} {
		ticket := domain.Ticket{OwnerID: owner, Title: "t", Description: "d", Urgency: domain.DefaultUrgency, Status: domain.TicketStatusOpen, PredictedCategoryID: 1}
		if err := store.Tickets().Create(ctx, &ticket); err != nil {
			t.Fatalf("create ticket: %v", err)
		}
	}

	mine, err := store.Tickets().ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != 1 || mine[1].ID != 3 {
		t.Fatalf("unexpected owner listing: %+v", mine)
	}
	if mine[0].OwnerUsername != "alice" {
		t.Fatalf("owner username not joined: %q", mine[0].OwnerUsername)
	}

	category := 2
	response := "Resolved"
	if err := store.Tickets().Update(ctx, domain.TicketUpdate{TicketID: 2, Status: domain.TicketStatusClosed, FinalCategoryID: &category, AdminResponse: &response}); err != nil {
		t.Fatalf("update: %v", err)
	}
	category = 4
	got, err := store.Tickets().GetByID(ctx, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.TicketStatusClosed || *got.FinalCategoryID != 2 || *got.AdminResponse != "Resolved" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.PredictedCategoryID != 1 {
		t.Fatalf("predicted category changed: %d", got.PredictedCategoryID)
	}

	if err := store.Tickets().Update(ctx, domain.TicketUpdate{TicketID: 99, Status: domain.TicketStatusOpen}); !IsNotFound(err) {
		t.Fatalf("expected not found on missing ticket, got %v", err)
	}
	if err := store.Tickets().Create(ctx, &domain.Ticket{OwnerID: 42}); !IsNotFound(err) {
		t.Fatalf("expected not found for unknown owner, got %v", err)
	}
}

func TestMemoryMessagesOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice := seedUser(t, store, "alice")
	ticket := domain.Ticket{OwnerID: alice.ID, Title: "t", Description: "d", Status: domain.TicketStatusOpen}
	if err := store.Tickets().Create(ctx, &ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	for _, text := range []string{"first", "second", "third"} {
		msg := domain.TicketMessage{TicketID: ticket.ID, SenderID: alice.ID, SenderRole: alice.Role, Text: text}
		if err := store.Messages().Create(ctx, &msg); err != nil {
			t.Fatalf("create message: %v", err)
		}
		if msg.SenderUsername != "alice" {
			t.Fatalf("sender username not joined: %q", msg.SenderUsername)
		}
	}

	thread, err := store.Messages().ListByTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(thread) != 3 || thread[0].Text != "first" || thread[2].Text != "third" {
		t.Fatalf("unexpected thread: %+v", thread)
	}

	empty, err := store.Messages().ListByTicket(ctx, 77)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v %v", empty, err)
	}
	if err := store.Messages().Create(ctx, &domain.TicketMessage{TicketID: 77, SenderID: alice.ID}); !IsNotFound(err) {
		t.Fatalf("expected not found for missing ticket, got %v", err)
	}
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Tickets().ListAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
