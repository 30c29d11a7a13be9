package user

import "go.uber.org/fx"

// Module provides the user administration service to Fx.
var Module = fx.Provide(NewService)
