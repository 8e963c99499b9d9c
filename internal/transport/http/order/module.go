package order

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	service "github.com/hotelprocure/procure/internal/service/order"
)

// Module wires HTTP order handlers.
var Module = fx.Options(
	fx.Provide(
		NewHandler,
		func(s *service.Service) Service { return s },
	),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)
