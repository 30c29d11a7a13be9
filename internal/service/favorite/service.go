package favorite

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	repo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/favorite"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/service/favorite")

// Service manages the menu items a user has starred.
type Service struct {
	repo   *repo.Repository
	logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(r *repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: r, logger: logger}
}

// List returns the starred menu items of a user.
func (s *Service) List(ctx context.Context, userID int64) ([]*entity.MenuItem, error) {
	ctx, span := serviceTracer.Start(ctx, "FavoriteService.List", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	items, err := s.repo.List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Failed to fetch favorites", errorbank.WithCause(err))
	}
	return items, nil
}

// Add stars a menu item for a user.
func (s *Service) Add(ctx context.Context, userID, menuItemID int64) error {
	if menuItemID <= 0 {
		return errorbank.BadRequest("menuItemId is required")
	}
	ctx, span := serviceTracer.Start(ctx, "FavoriteService.Add", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if err := s.repo.Add(ctx, userID, menuItemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("Failed to add favorite", errorbank.WithCause(err))
	}
	return nil
}

// Remove unstars a menu item for a user.
func (s *Service) Remove(ctx context.Context, userID, menuItemID int64) error {
	ctx, span := serviceTracer.Start(ctx, "FavoriteService.Remove", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if err := s.repo.Remove(ctx, userID, menuItemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("Failed to remove favorite", errorbank.WithCause(err))
	}
	return nil
}
