package order

import "go.uber.org/fx"

// Module exposes the bun-backed order store.
var Module = fx.Provide(NewRepository)
