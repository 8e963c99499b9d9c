// Package identity resolves the acting user forwarded by the upstream gateway.
package identity

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hotelprocure/procure/internal/presentation/http/response"
	"github.com/hotelprocure/procure/pkg/errorbank"
)

// Header carries the authenticated user id.
const Header = "X-User-ID"

const contextKey = "identity.actor"

// Middleware stores the acting user id from Header on the request context.
// Requests without the header pass through anonymously; a malformed value is rejected.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(Header))
			if raw == "" {
				return next(c)
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return response.New(c).
					WithError(errorbank.Unauthorized("invalid acting user", errorbank.WithDetail("header", Header))).
					Build()
			}
			c.Set(contextKey, id)
			return next(c)
		}
	}
}

// ActorID returns the acting user id, or 0 for anonymous requests.
func ActorID(c echo.Context) int64 {
	id, _ := c.Get(contextKey).(int64)
	return id
}
