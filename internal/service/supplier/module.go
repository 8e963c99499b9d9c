package supplier

import (
	"go.uber.org/fx"

	catalogrepo "github.com/hotelprocure/procure/internal/repository/catalog"
	orderrepo "github.com/hotelprocure/procure/internal/repository/order"
	repo "github.com/hotelprocure/procure/internal/repository/supplier"
)

// Module provides the supplier service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Repository { return r },
	func(r *catalogrepo.Repository) Offers { return r },
	func(r *orderrepo.Repository) Orders { return r },
)
