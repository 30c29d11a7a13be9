package order

import "go.uber.org/fx"

// Module exposes the order lifecycle service.
var Module = fx.Provide(NewService)
