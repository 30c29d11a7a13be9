package http

import (
	"go.uber.org/fx"

	accounttransport "github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/account"
	admintransport "github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/admin"
	favoritetransport "github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/favorite"
	kitchentransport "github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/kitchen"
	menutransport "github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/menu"
	ordertransport "github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/order"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/ws"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	accounttransport.Module,
	menutransport.Module,
	ordertransport.Module,
	kitchentransport.Module,
	favoritetransport.Module,
	admintransport.Module,
	ws.Module,
)
