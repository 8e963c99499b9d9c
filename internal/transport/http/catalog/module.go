package catalog

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	service "github.com/hotelprocure/procure/internal/service/catalog"
)

// Module wires HTTP catalog handlers.
var Module = fx.Options(
	fx.Provide(
		NewHandler,
		func(s *service.Service) Service { return s },
	),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)
