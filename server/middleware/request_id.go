package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/scheduleterp/server/internal/observability"
)

// HeaderRequestID carries the request ID in and out of the API.
const HeaderRequestID = "X-Request-ID"

// RequestID attaches an observability.RequestContext to every request.
// A caller-supplied X-Request-ID is reused, otherwise a short UUID is minted.
func RequestID(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if id == "" {
				id = shortuuid.New()
			}
			c.Response().Header().Set(HeaderRequestID, id)

			reqCtx := observability.NewRequestContextWithID(logger, id, req.Method+" "+c.Path())
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
			return next(c)
		}
	}
}
