package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/validation"
)

// Messages returned to clients by the identity flows.
const (
	MsgRegistrationSuccessful = "registration successful"
	MsgRegistrationDeclined   = "username or email already in use"
	MsgUserNotFound           = "user not found"
	MsgWrongPassword          = "wrong password"
)

// RegisterInput carries the self-registration form. Role is accepted for
// compatibility and ignored: new accounts are always StandardUser. Username and
// email are trimmed before validation; the password is kept verbatim.
type RegisterInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,max=72"`
	Role     string
}

// RegisterOutcome reports a successful registration.
type RegisterOutcome struct {
	Message string
	User    *domain.User
}

type loginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	validator  *validation.Validator
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	Validator  *validation.Validator
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = validation.MustNew()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		validator:  v,
		logger:     logger.With(zap.String("component", "auth_service")),
		metrics:    deps.Metrics,
	}
}

// TokenManager exposes the token manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates a StandardUser account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (RegisterOutcome, error) {
	user, err := s.createUser(ctx, input, domain.RoleStandardUser)
	if err != nil {
		return RegisterOutcome{}, err
	}
	return RegisterOutcome{Message: MsgRegistrationSuccessful, User: user}, nil
}

// ProvisionAdmin creates an Admin account. It is only reachable from the
// operator CLI, never from HTTP.
func (s *AuthService) ProvisionAdmin(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, domain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	if len(input.Password) > auth.MaxPasswordBytes {
		msg := fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes)
		return nil, apperrors.NewValidationError(msg, map[string]any{"Password": msg})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Info("registration declined", zap.String("username", input.Username))
			return nil, apperrors.NewDeclined("REGISTRATION_DECLINED", MsgRegistrationDeclined)
		}
		return nil, apperrors.ToDomainError(err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Login verifies credentials and issues a token snapshotting id, username and
// role.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if err := s.validator.Struct(loginInput{Username: username, Password: password}); err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			s.metrics.AuthRejected("unknown_user")
			return LoginResult{}, apperrors.NewDeclined("USER_NOT_FOUND", MsgUserNotFound)
		}
		return LoginResult{}, apperrors.ToDomainError(err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.metrics.AuthRejected("wrong_password")
		return LoginResult{}, apperrors.NewDeclined("WRONG_PASSWORD", MsgWrongPassword)
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return LoginResult{}, apperrors.NewInternalError(err)
	}
	return LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}
