package catalog

import (
	"go.uber.org/fx"

	repo "github.com/hotelprocure/procure/internal/repository/catalog"
)

// Module provides the catalog service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Repository { return r },
)
