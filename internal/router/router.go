package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/quemtemboca/marketplace-api/internal/config"
	"github.com/quemtemboca/marketplace-api/internal/handler"
	"github.com/quemtemboca/marketplace-api/internal/middleware"
)

// Deps bundles what the routes need.  Redis may be nil, in which case rate
// limiting and response caching are skipped.
type Deps struct {
	Cfg   config.Config
	DB    handler.Pinger
	Redis *redis.Client
	Auth  *handler.AuthHandler
	Users *handler.UserHandler
	Guard echo.MiddlewareFunc
}

// RegisterRoutes registers every API route on e.
//
//	GET    /api/health          public
//	POST   /api/auth            public, rate limited
//	POST   /api/auth/recovery   public, rate limited
//	GET    /api/auth/me         guarded
//	POST   /api/users           public
//	GET    /api/users[/:id]     guarded, cached
//	PUT    /api/users/:id       guarded (self or admin)
//	DELETE /api/users/:id       guarded (self or admin)
//	DELETE /api/admin/users/:id guarded, admin only
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/", handler.RedirectToHealth)
	e.GET("/api", handler.RedirectToHealth)
	e.GET("/api/", handler.RedirectToHealth)
	e.GET("/api/health", handler.Health(d.DB))

	registerAuth(e, d)
	registerUsers(e, d)
	registerAdmin(e, d)
}

func registerAuth(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis)

	g := e.Group("/api/auth")
	g.POST("", d.Auth.Login, limit)
	g.POST("/recovery", d.Auth.Recovery, limit)
	g.GET("/me", d.Auth.Me, d.Guard)
}

func registerUsers(e *echo.Echo, d Deps) {
	cache := middleware.NewRedisCache(d.Cfg.Cache, d.Redis)
	invalidate := middleware.InvalidateCache(d.Cfg.Cache, d.Redis)

	g := e.Group("/api/users")
	g.POST("", d.Users.Create, invalidate)
	g.GET("", d.Users.List, d.Guard, cache)
	g.GET("/:id", d.Users.Get, d.Guard, cache)
	g.PUT("/:id", d.Users.Update, d.Guard, invalidate)
	g.DELETE("/:id", d.Users.Delete, d.Guard, invalidate)
}

func registerAdmin(e *echo.Echo, d Deps) {
	invalidate := middleware.InvalidateCache(d.Cfg.Cache, d.Redis)

	g := e.Group("/api/admin", d.Guard, middleware.RequireAdmin())
	g.DELETE("/users/:id", d.Users.Delete, invalidate)
}
