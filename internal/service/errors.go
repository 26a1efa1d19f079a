package service

import (
	"context"
	"errors"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
)

// Kind classifies a service failure.  Handlers map kinds to HTTP statuses;
// nothing below the handler layer knows about status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidCredentials
	KindTokenInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a classified failure carrying a user-facing message.  Two errors
// match under errors.Is when their kinds are equal.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = &Error{KindInvalidCredentials, "Email or password are incorrect."}
	ErrTokenInvalid       = &Error{KindTokenInvalid, "Invalid or expired token. Please log in to your account again!"}
	ErrMissingAuthHeader  = &Error{KindUnauthorized, "Authorization header not found."}
	ErrForbidden          = &Error{KindForbidden, "You do not have permission to perform this action."}
	ErrUserNotFound       = &Error{KindNotFound, "User not found!"}
	ErrEmailTaken         = &Error{KindConflict, "A user with the given email already exists."}
	ErrInternal           = &Error{KindInternal, "An internal server error has occurred. Please check the parameters or try again later."}
)

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// classify lets classified errors through and collapses everything else into
// ErrInternal.  The original error is logged, never returned.
func classify(ctx context.Context, op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	l := logutil.GetOrDefault(ctx)
	l.Error().Err(err).Str("op", op).Msg("unexpected failure")
	return ErrInternal
}
