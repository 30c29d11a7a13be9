package app

import (
	"go.uber.org/fx"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/cache"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/logger"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/messaging"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/observability"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime"
	repositoryfavorite "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/favorite"
	repositorymenu "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/menu"
	repositoryorder "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/order"
	repositoryuser "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/user"
	grpcserver "github.com/AndersBondeLudvigsen/FoodOrdering/internal/server/grpc"
	httpserver "github.com/AndersBondeLudvigsen/FoodOrdering/internal/server/http"
	serviceaccount "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/account"
	servicefavorite "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/favorite"
	servicemenu "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/menu"
	serviceorder "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/order"
	serviceuser "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/user"
	transporthttp "github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/worker"
	workerorder "github.com/AndersBondeLudvigsen/FoodOrdering/internal/worker/order"
)

// Infra provides configuration, logging, telemetry and the storage, cache and bus clients.
var Infra = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
	database.Module,
	cache.Module,
	messaging.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Infra,
	realtime.Module,
	auth.Module,
	repositoryuser.Module,
	repositorymenu.Module,
	repositoryorder.Module,
	repositoryfavorite.Module,
	serviceaccount.Module,
	serviceuser.Module,
	servicemenu.Module,
	serviceorder.Module,
	servicefavorite.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
