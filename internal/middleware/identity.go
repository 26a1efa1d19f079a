package middleware

// identity.go carries the authenticated caller through the request context.
// Only AuthGuard stores a caller; everything downstream reads it back with
// CallerFrom.

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quemtemboca/marketplace-api/internal/model"
)

type callerKey struct{}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored by AuthGuard.  ok is false on routes
// that are not guarded.
func CallerFrom(ctx context.Context) (caller model.Caller, ok bool) {
	caller, ok = ctx.Value(callerKey{}).(model.Caller)
	return caller, ok
}

// callerID renders the caller id for use in keys, or "anon".
func callerID(c echo.Context) string {
	if caller, ok := CallerFrom(c.Request().Context()); ok {
		return strconv.FormatUint(caller.ID, 10)
	}
	return "anon"
}
