package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func TestMessageThreadOrderAndRoles(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.addUser(t, "alice", domain.RoleStandardUser)
	admin := f.addUser(t, "root", domain.RoleAdmin)
	ticket := f.createTicket(t, alice, "wifi")

	posts := []struct {
		sender *auth.Principal
		text   string
	}{
		{alice, "first"},
		{admin, "second"},
		{alice, "third"},
	}
	for _, p := range posts {
		msg, err := f.messages.Append(ctx, p.sender, ticket.ID, p.text)
		if err != nil {
			t.Fatalf("Append %q: %v", p.text, err)
		}
		if msg.SenderRole != p.sender.Identity.Role || msg.SenderUsername != p.sender.Identity.DisplayName {
			t.Fatalf("sender not captured: %+v", msg)
		}
	}

	for _, reader := range []struct {
		name   string
		caller *auth.Principal
	}{{"owner", alice}, {"admin", admin}} {
		t.Run(reader.name, func(t *testing.T) {
			thread, err := f.messages.List(ctx, reader.caller, ticket.ID)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{"first", "second", "third"}
			if len(thread) != len(want) {
				t.Fatalf("thread length %d", len(thread))
			}
			for i, msg := range thread {
				if msg.Text != want[i] {
					t.Fatalf("message %d = %q, want %q", i, msg.Text, want[i])
				}
			}
			if thread[1].SenderRole != domain.RoleAdmin || thread[0].SenderRole != domain.RoleStandardUser {
				t.Fatalf("roles not preserved: %+v", thread)
			}
		})
	}

	types := f.dispatcher.types()
	if types[len(types)-1] != events.EventTicketMessageAdded {
		t.Fatalf("expected message event, got %v", types)
	}
}

func TestMessageEmptyThread(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.addUser(t, "alice", domain.RoleStandardUser)
	ticket := f.createTicket(t, alice, "quiet")

	thread, err := f.messages.List(context.Background(), alice, ticket.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if thread == nil || len(thread) != 0 {
		t.Fatalf("expected empty non-nil thread, got %#v", thread)
	}
}

func TestMessageAccessControl(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.addUser(t, "alice", domain.RoleStandardUser)
	mallory := f.addUser(t, "mallory", domain.RoleStandardUser)
	ticket := f.createTicket(t, alice, "private")

	_, err := f.messages.Append(ctx, mallory, ticket.ID, "let me in")
	assertErrorCode(t, err, "FORBIDDEN", http.StatusForbidden)

	_, err = f.messages.List(ctx, mallory, ticket.ID)
	assertErrorCode(t, err, "FORBIDDEN", http.StatusForbidden)

	_, err = f.messages.List(ctx, nil, ticket.ID)
	assertErrorCode(t, err, "UNAUTHENTICATED", http.StatusUnauthorized)

	_, err = f.messages.List(ctx, nil, 404)
	assertErrorCode(t, err, "UNAUTHENTICATED", http.StatusUnauthorized)

	_, err = f.messages.Append(ctx, alice, 404, "hello")
	assertErrorCode(t, err, "NOT_FOUND", http.StatusNotFound)

	_, err = f.messages.List(ctx, alice, 404)
	assertErrorCode(t, err, "NOT_FOUND", http.StatusNotFound)

	_, err = f.messages.Append(ctx, alice, ticket.ID, "   ")
	assertErrorCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)

	_, err = f.messages.Append(ctx, alice, ticket.ID, strings.Repeat("x", 4001))
	assertErrorCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)

	thread, _ := f.messages.List(ctx, alice, ticket.ID)
	if len(thread) != 0 {
		t.Fatalf("rejected messages were stored: %+v", thread)
	}
}

func TestMessageTextStoredAsSent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.addUser(t, "alice", domain.RoleStandardUser)
	ticket := f.createTicket(t, alice, "spacing")

	const text = "  line one\n    indented\n"
	msg, err := f.messages.Append(ctx, alice, ticket.ID, text)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if msg.Text != text {
		t.Fatalf("returned text = %q, want %q", msg.Text, text)
	}

	thread, err := f.messages.List(ctx, alice, ticket.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(thread) != 1 || thread[0].Text != text {
		t.Fatalf("stored thread = %+v, want text %q", thread, text)
	}
}
