package user

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

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	repo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/user"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/account"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/service/user")

// PasswordHasher hashes plain passwords for storage.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// Patch is a partial user update; empty fields are ignored.
type Patch struct {
	Username string
	Email    string
	Role     string
	Password string
}

// Service lets administrators list and edit accounts.
type Service struct {
	repo   *repo.Repository
	hasher PasswordHasher
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Accounts   *account.Service
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return New(p.Repository, p.Accounts, p.Logger)
}

// New builds a Service from explicit collaborators.
func New(r *repo.Repository, hasher PasswordHasher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: r, hasher: hasher, logger: logger}
}

// List returns every account ordered by username.
func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.List")
	defer span.End()

	users, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error fetching users", errorbank.WithCause(err))
	}
	return users, nil
}

// Update applies a patch to an account and returns the stored result.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*entity.User, error) {
	var changes repo.Changes
	if v := strings.TrimSpace(patch.Username); v != "" {
		changes.Username = &v
	}
	if v := strings.TrimSpace(patch.Email); v != "" {
		changes.Email = &v
	}
	if patch.Role != "" {
		role := entity.Role(patch.Role)
		if !role.Valid() {
			return nil, errorbank.BadRequest("Invalid role", errorbank.WithDetail("role", patch.Role))
		}
		changes.Role = &role
	}

	ctx, span := serviceTracer.Start(ctx, "UserService.Update", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	if patch.Password != "" {
		hash, err := s.hasher.HashPassword(patch.Password)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "hash failed")
			return nil, errorbank.Internal("Server error updating user", errorbank.WithCause(err))
		}
		changes.PasswordHash = &hash
	}
	if changes.Empty() {
		return nil, errorbank.BadRequest("No fields to update")
	}

	u, err := s.repo.Update(ctx, id, changes)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, errorbank.NotFound("User not found")
	case errors.Is(err, repo.ErrEmailTaken):
		return nil, errorbank.Conflict("Email already in use")
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error updating user", errorbank.WithCause(err))
	}

	s.logger.Info("user updated", zap.Int64("user_id", id), zap.String("role", string(u.Role)))
	return u, nil
}
