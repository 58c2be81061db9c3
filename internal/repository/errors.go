// Package repository defines the data access layer and the error values
// shared across repositories. These sentinel values allow higher layers such
// as handlers to distinguish between different failure scenarios with
// errors.Is and translate them into HTTP status codes.
package repository

import "errors"

// ErrTipNotFound is returned when no tip matches the requested id.
// Handlers should translate this into an HTTP 404 response.
var ErrTipNotFound = errors.New("tip not found")

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert would break the unique email
// index. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
