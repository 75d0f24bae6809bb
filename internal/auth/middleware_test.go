package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newGuardedApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	mw := NewAuthMiddleware(tm, zap.NewNop())
	mediator := NewMediator()

	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized()
		}
		return c.SendString(principal.Identity.DisplayName)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(mediator), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tm := newTestManager(clock)
	userToken, _, _ := tm.Issue(1, "alice", domain.RoleStandardUser)
	adminToken, _, _ := tm.Issue(2, "root", domain.RoleAdmin)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{name: "no header", path: "/me", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/me", header: "Basic " + userToken, wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", path: "/me", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "bad token", path: "/me", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid token", path: "/me", header: "Bearer " + userToken, wantStatus: http.StatusOK},
		{name: "lowercase scheme", path: "/me", header: "bearer " + userToken, wantStatus: http.StatusOK},
		{name: "user on admin route", path: "/admin", header: "Bearer " + userToken, wantStatus: http.StatusForbidden},
		{name: "admin on admin route", path: "/admin", header: "Bearer " + adminToken, wantStatus: http.StatusNoContent},
	}

	app := newGuardedApp(tm)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	tm := newTestManager(clock)
	token, _, _ := tm.Issue(1, "alice", domain.RoleStandardUser)
	clock.now = clock.now.Add(25 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newGuardedApp(tm).Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
