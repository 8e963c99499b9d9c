package order

import (
	"go.uber.org/fx"

	"github.com/hotelprocure/procure/internal/ordernumber"
	catalogrepo "github.com/hotelprocure/procure/internal/repository/catalog"
	repo "github.com/hotelprocure/procure/internal/repository/order"
	orgrepo "github.com/hotelprocure/procure/internal/repository/organization"
)

// Module provides the order service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Repository { return r },
	func(r *catalogrepo.Repository) Offers { return r },
	func(r *orgrepo.Repository) Directory { return r },
	func(a *ordernumber.Allocator) Numbers { return a },
)
