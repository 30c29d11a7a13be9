// Package account handles sign-up, login and password changes.
package account

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	repo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/user"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/service/account")

// Session is the result of a successful login.
type Session struct {
	Token string
	Role  entity.Role
}

// Service manages account credentials.
type Service struct {
	repo   *repo.Repository
	tokens *auth.Tokens
	cost   int
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Tokens     *auth.Tokens
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := p.Config.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: p.Repository, tokens: p.Tokens, cost: cost, logger: logger}
}

// HashPassword hashes a plain password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Signup registers a customer account.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*entity.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, errorbank.BadRequest("Missing fields")
	}
	ctx, span := serviceTracer.Start(ctx, "AccountService.Signup")
	defer span.End()

	hash, err := s.HashPassword(password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return nil, errorbank.Internal("Server error during signup", errorbank.WithCause(err))
	}

	u := &entity.User{Username: username, Email: email, Password: hash, Role: entity.RoleCustomer}
	err = s.repo.Create(ctx, u)
	if errors.Is(err, repo.ErrEmailTaken) {
		return nil, errorbank.Conflict("Email already in use")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error during signup", errorbank.WithCause(err))
	}

	s.logger.Info("user signed up", zap.Int64("user_id", u.ID))
	return u, nil
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, errorbank.BadRequest("Missing credentials")
	}
	ctx, span := serviceTracer.Start(ctx, "AccountService.Login")
	defer span.End()

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, errorbank.BadRequest("Invalid credentials")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return Session{}, errorbank.Internal("Server error during login", errorbank.WithCause(err))
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return Session{}, errorbank.BadRequest("Invalid credentials")
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token failed")
		return Session{}, errorbank.Internal("Server error during login", errorbank.WithCause(err))
	}
	span.SetAttributes(attribute.Int64("user.id", u.ID))
	return Session{Token: token, Role: u.Role}, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return errorbank.BadRequest("Both passwords are required")
	}
	ctx, span := serviceTracer.Start(ctx, "AccountService.ChangePassword", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("User not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("Server error", errorbank.WithCause(err))
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return errorbank.Unauthorized("Current password is incorrect")
	}

	hash, err := s.HashPassword(newPassword)
	if err == nil {
		err = s.repo.UpdatePassword(ctx, userID, hash)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return errorbank.Internal("Server error", errorbank.WithCause(err))
	}
	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}
