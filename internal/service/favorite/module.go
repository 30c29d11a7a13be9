package favorite

import "go.uber.org/fx"

// Module provides the favorites service to Fx.
var Module = fx.Provide(NewService)
