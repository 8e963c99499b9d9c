package organization

import (
	"go.uber.org/fx"

	repo "github.com/hotelprocure/procure/internal/repository/organization"
)

// Module provides the organization service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Repository { return r },
)
