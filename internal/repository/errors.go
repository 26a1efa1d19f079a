// Package repository defines error types that are reused across repository
// methods.  These sentinel values allow higher layers such as services to
// distinguish between different failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrUserNotFound is returned when no row matches the requested user.
// Services translate it into a 404 or, during login, into invalid
// credentials.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert collides with the unique
// email_hash index.  Services translate it into a 409 response.
var ErrEmailExists = errors.New("email already exists")
