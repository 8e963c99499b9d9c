package report

import (
	"go.uber.org/fx"

	repo "github.com/hotelprocure/procure/internal/repository/order"
)

// Module provides the report service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Repository { return r },
)
