package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResp struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Database    string `json:"database"`
	Timestamp   string `json:"timestamp"`
}

// Health reports whether the API can reach its database.  It answers 200
// when the ping succeeds and 500 otherwise, with the same body shape.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		resp := healthResp{
			Description: "Quem-Tem-Boca-API",
			Status:      "healthy",
			Database:    "connected",
			Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		}
		if err := db.PingContext(ctx); err != nil {
			l := logutil.GetOrDefault(ctx)
			l.Error().Err(err).Msg("health: database ping failed")
			resp.Status, resp.Database = "unhealthy", "disconnected"
			return c.JSON(http.StatusInternalServerError, resp)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// RedirectToHealth sends bare root requests to the health endpoint.
func RedirectToHealth(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/api/health")
}
