package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the acting user does not own the target row.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrNoToken signals that the user has no usable calendar token: none was
// stored, or the stored one expired and could not be refreshed.
// Callers should prompt the user to reconnect rather than retry.
var ErrNoToken = errors.New("no usable calendar token")

// ErrUpstream wraps failures of third-party APIs (places, weather, calendar).
var ErrUpstream = errors.New("upstream service error")
