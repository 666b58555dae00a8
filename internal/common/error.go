// Package common defines shared constants and sentinel errors used across
// the PlaceKeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")

	// Validation errors surfaced to the client as 422.
	ErrorValidation = errors.New("validation error")
	ErrorEmailTaken = errors.New("email already taken")

	// Photo intake errors surfaced to the client as 409.
	ErrorDownloadFailed = errors.New("download failed")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
)
