package favorite

import "go.uber.org/fx"

// Module provides the favorite repository to Fx.
var Module = fx.Provide(NewRepository)
