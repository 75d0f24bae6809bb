package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	outcome, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.io", Password: "p@ss1", Role: "Admin"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if outcome.Message != MsgRegistrationSuccessful {
		t.Fatalf("unexpected outcome message %q", outcome.Message)
	}
	if outcome.User.Role != domain.RoleStandardUser {
		t.Fatalf("requested role must be ignored, got %s", outcome.User.Role)
	}
	if outcome.User.PasswordHash == "p@ss1" {
		t.Fatal("password stored in plaintext")
	}

	result, err := f.auth.Login(ctx, "alice", "p@ss1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	identity, err := f.tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if identity.UserID != outcome.User.ID || identity.DisplayName != "alice" || identity.Role != domain.RoleStandardUser {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if !result.ExpiresAt.Equal(identity.ExpiresAt) {
		t.Fatalf("expiry mismatch: %v vs %v", result.ExpiresAt, identity.ExpiresAt)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.io", Password: "p@ss1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		code     string
	}{
		{"wrong password", "alice", "nope", "WRONG_PASSWORD"},
		{"unknown user", "bob", "p@ss1", "USER_NOT_FOUND"},
		{"empty password", "alice", "", "VALIDATION_FAILED"},
		{"username is case sensitive", "Alice", "p@ss1", "USER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Login(ctx, tt.username, tt.password)
			assertErrorCode(t, err, tt.code, http.StatusBadRequest)
		})
	}
}

func TestRegisterRejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.io", Password: "p@ss1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name  string
		input RegisterInput
		code  string
	}{
		{"duplicate username", RegisterInput{Username: "alice", Email: "b@x.io", Password: "pw"}, "REGISTRATION_DECLINED"},
		{"duplicate email", RegisterInput{Username: "bob", Email: "a@x.io", Password: "pw"}, "REGISTRATION_DECLINED"},
		{"missing username", RegisterInput{Email: "c@x.io", Password: "pw"}, "VALIDATION_FAILED"},
		{"bad email", RegisterInput{Username: "carol", Email: "not-an-email", Password: "pw"}, "VALIDATION_FAILED"},
		{"missing password", RegisterInput{Username: "carol", Email: "c@x.io"}, "VALIDATION_FAILED"},
		{"blank username", RegisterInput{Username: "   ", Email: "c@x.io", Password: "pw"}, "VALIDATION_FAILED"},
		{"password over 72 bytes in 72 runes", RegisterInput{Username: "carol", Email: "c@x.io", Password: strings.Repeat("ş", 72)}, "VALIDATION_FAILED"},
		{"password over 72 ascii bytes", RegisterInput{Username: "carol", Email: "c@x.io", Password: strings.Repeat("a", 73)}, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.input)
			assertErrorCode(t, err, tt.code, http.StatusBadRequest)
		})
	}
}

func TestProvisionAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	user, err := f.auth.ProvisionAdmin(ctx, RegisterInput{Username: "root", Email: "root@x.io", Password: "s3cret"})
	if err != nil {
		t.Fatalf("ProvisionAdmin: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected Admin, got %s", user.Role)
	}

	result, err := f.auth.Login(ctx, "root", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	identity, err := f.tokens.Verify(result.Token)
	if err != nil || !identity.IsAdmin() {
		t.Fatalf("expected admin identity, got %+v (%v)", identity, err)
	}
}

func TestRegisterPasswordAtByteLimit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// 36 two-byte runes fill bcrypt's 72 byte input exactly.
	password := strings.Repeat("ş", 36)
	if _, err := f.auth.Register(ctx, RegisterInput{Username: "deniz", Email: "d@x.io", Password: password}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := f.auth.Login(ctx, "deniz", password); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestRegisterTrimsIdentity(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	outcome, err := f.auth.Register(ctx, RegisterInput{Username: "  erin ", Email: " e@x.io ", Password: "pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if outcome.User.Username != "erin" || outcome.User.Email != "e@x.io" {
		t.Fatalf("identity not trimmed: %q %q", outcome.User.Username, outcome.User.Email)
	}
	if _, err := f.auth.Login(ctx, " erin", "pw"); err != nil {
		t.Fatalf("Login with padded username: %v", err)
	}

	_, err = f.auth.Register(ctx, RegisterInput{Username: "erin  ", Email: "other@x.io", Password: "pw"})
	assertErrorCode(t, err, "REGISTRATION_DECLINED", http.StatusBadRequest)
}
