package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/quemtemboca/marketplace-api/internal/handler"
	"github.com/quemtemboca/marketplace-api/internal/middleware"
)

// New builds the API server: error handling, validation, client IP policy
// and the common middleware, followed by every route.
func New(d Deps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler
	e.IPExtractor = ipExtractor(d.Cfg.TrustProxy)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))

	RegisterRoutes(e, d)
	return e
}

// ipExtractor decides where c.RealIP comes from.  Without a trusted proxy
// the socket peer is the client and forwarding headers are ignored.
func ipExtractor(trustProxy bool) echo.IPExtractor {
	if trustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}
