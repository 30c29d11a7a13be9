package menu

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/cache"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/dto"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime"
	repo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/menu"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/service/menu")
	serviceMeter  = otel.Meter("github.com/AndersBondeLudvigsen/FoodOrdering/service/menu")
)

// CacheKey holds the serialized public menu.
const CacheKey = "menu:items"

// Input is the admin payload for creating or replacing a menu item.
type Input struct {
	Name        string
	Price       *float64
	Category    *string
	ImageURL    *string
	Available   *bool
	Ingredients []string
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" || in.Price == nil {
		return errorbank.BadRequest("Name and numeric price are required")
	}
	if *in.Price < 0 {
		return errorbank.BadRequest("Price must not be negative")
	}
	return nil
}

func (in Input) entity(id int64) *entity.MenuItem {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	return &entity.MenuItem{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Price:     *in.Price,
		Category:  in.Category,
		ImageURL:  in.ImageURL,
		Available: available,
	}
}

// Service manages the menu catalog and broadcasts availability changes.
type Service struct {
	repo     *repo.Repository
	cache    cache.Store
	cacheTTL time.Duration
	notifier realtime.Publisher
	logger   *zap.Logger

	toggles metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Notifier   realtime.Publisher
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:     p.Repository,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		notifier: p.Notifier,
		logger:   logger,
	}
	var err error
	if s.toggles, err = serviceMeter.Int64Counter("menu.availability_toggles"); err != nil {
		logger.Warn("availability metric unavailable", zap.Error(err))
	}
	return s
}

// List returns the public menu ordered by id, served from cache when possible.
func (s *Service) List(ctx context.Context) ([]dto.MenuItemResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.List")
	defer span.End()

	if items, err := s.getFromCache(ctx); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return items, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("menu cache read failed", zap.Error(err))
	}

	items, err := s.repo.List(ctx, repo.ByID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error loading menu", errorbank.WithCause(err))
	}
	out := dto.FromMenuItems(items)

	if err := s.storeInCache(ctx, out); err != nil {
		s.logger.Warn("menu cache write failed", zap.Error(err))
	}
	return out, nil
}

// Get returns one menu item with its ingredients.
func (s *Service) Get(ctx context.Context, id int64) (dto.MenuItemResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.Get", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return dto.MenuItemResponse{}, errorbank.NotFound("Item not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return dto.MenuItemResponse{}, errorbank.Internal("Server error", errorbank.WithCause(err))
	}
	return dto.FromMenuItem(item), nil
}

// ListForAdmin returns every menu item ordered by name.
func (s *Service) ListForAdmin(ctx context.Context) ([]dto.MenuItemResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.ListForAdmin")
	defer span.End()

	items, err := s.repo.List(ctx, repo.ByName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error fetching menu items", errorbank.WithCause(err))
	}
	return dto.FromMenuItems(items), nil
}

// Create adds a menu item and returns its id.
func (s *Service) Create(ctx context.Context, in Input) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.Create", trace.WithAttributes(attribute.String("menu_item.name", in.Name)))
	defer span.End()

	item := in.entity(0)
	if err := s.repo.Create(ctx, item, in.Ingredients); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return 0, errorbank.Internal("Server error creating menu item", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	s.logger.Info("menu item created", zap.Int64("menu_item_id", item.ID), zap.String("name", item.Name))
	return item.ID, nil
}

// Update replaces a menu item's fields and ingredients.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	if err := in.validate(); err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.Update", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	err := s.repo.Update(ctx, in.entity(id), in.Ingredients)
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("Item not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("Server error updating menu item", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	s.logger.Info("menu item updated", zap.Int64("menu_item_id", id))
	return nil
}

// Delete removes a menu item.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "MenuService.Delete", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("Item not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("Server error deleting menu item", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	s.logger.Info("menu item deleted", zap.Int64("menu_item_id", id))
	return nil
}

// SetAvailability flips whether an item can be ordered and tells every
// connected client.
func (s *Service) SetAvailability(ctx context.Context, id int64, available bool) (*entity.MenuItem, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.SetAvailability", trace.WithAttributes(
		attribute.Int64("menu_item.id", id),
		attribute.Bool("menu_item.available", available),
	))
	defer span.End()

	item, err := s.repo.SetAvailability(ctx, id, available)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("Menu item not found", errorbank.WithDetail("id", id))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error updating availability", errorbank.WithCause(err))
	}

	s.invalidate(ctx)
	if s.toggles != nil {
		s.toggles.Add(ctx, 1, metric.WithAttributes(attribute.Bool("available", available)))
	}
	s.logger.Info("menu item availability changed", zap.Int64("menu_item_id", id), zap.Bool("available", available))

	s.notifier.Publish(ctx, realtime.KitchenChannel, realtime.MenuItemUpdated{ID: item.ID, Available: item.Available})
	return item, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKey); err != nil {
		s.logger.Warn("menu cache invalidation failed", zap.Error(err))
	}
}

func (s *Service) getFromCache(ctx context.Context) ([]dto.MenuItemResponse, error) {
	return cache.GetJSON[[]dto.MenuItemResponse](ctx, s.cache, CacheKey)
}

func (s *Service) storeInCache(ctx context.Context, items []dto.MenuItemResponse) error {
	return cache.SetJSON(ctx, s.cache, CacheKey, items, s.cacheTTL)
}
