package order

import (
	"go.uber.org/fx"

	"github.com/hotelprocure/procure/internal/ordernumber"
)

// Module provides the order repository to Fx, also as the order number source.
var Module = fx.Provide(
	NewRepository,
	func(r *Repository) ordernumber.Source { return r },
)
