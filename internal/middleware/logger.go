package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
)

// RequestLogger attaches a request-scoped logger (tagged with the request id)
// to the request context and writes one line per completed request.  It must
// run after echo's RequestID middleware.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)

			l := base.With().Str("request_id", rid).Logger()
			c.SetRequest(req.WithContext(logutil.WithLogger(req.Context(), l)))

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			status := c.Response().Status
			ev := l.Info()
			if status >= 500 {
				ev = l.Error()
			}
			ev.Str("method", req.Method).
				Str("path", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
