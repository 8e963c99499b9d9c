package shipment

import (
	"go.uber.org/fx"

	repo "github.com/hotelprocure/procure/internal/repository/shipment"
	ordersvc "github.com/hotelprocure/procure/internal/service/order"
)

// Module provides the shipment service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Repository { return r },
	func(s *ordersvc.Service) Orders { return s },
)
