package cart

import (
	"go.uber.org/fx"

	catalogrepo "github.com/hotelprocure/procure/internal/repository/catalog"
	orderservice "github.com/hotelprocure/procure/internal/service/order"
)

// Module provides the cart service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *catalogrepo.Repository) Offers { return r },
	func(s *orderservice.Service) Orders { return s },
)
