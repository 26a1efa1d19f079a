package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
	"github.com/quemtemboca/marketplace-api/internal/model"
	"github.com/quemtemboca/marketplace-api/internal/service"
)

// TokenChecker verifies a raw access token.
type TokenChecker interface {
	CheckToken(raw string) (model.IdentityClaim, error)
}

// CallerResolver loads the caller projection for a verified account id.
type CallerResolver interface {
	GetLoggedInUser(ctx context.Context, id uint64) (model.Caller, error)
}

// AuthGuard rejects requests without a valid access token and stores the
// resolved caller in the request context.  Rejections are returned as
// *service.Error values and rendered by the HTTP error handler, so the
// wrapped handler never runs for them.
//
// A token whose account no longer exists is treated like an invalid token.
func AuthGuard(tokens TokenChecker, users CallerResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			log := logutil.GetOrDefault(req.Context())

			header := req.Header.Get(echo.HeaderAuthorization)
			if header == "" {
				log.Debug().Str("path", c.Path()).Msg("auth: missing authorization header")
				return service.ErrMissingAuthHeader
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claim, err := tokens.CheckToken(raw)
			if err != nil {
				log.Debug().Str("path", c.Path()).Msg("auth: token rejected")
				return service.ErrTokenInvalid
			}

			ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
			defer cancel()
			caller, err := users.GetLoggedInUser(ctx, claim.ID)
			if err != nil {
				if errors.Is(err, service.ErrUserNotFound) {
					log.Debug().Uint64("user_id", claim.ID).Msg("auth: token subject no longer exists")
					return service.ErrTokenInvalid
				}
				return err
			}

			c.SetRequest(req.WithContext(WithCaller(req.Context(), caller)))
			return next(c)
		}
	}
}
