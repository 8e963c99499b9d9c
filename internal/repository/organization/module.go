package organization

import "go.uber.org/fx"

// Module provides the organization repository to Fx.
var Module = fx.Provide(NewRepository)
