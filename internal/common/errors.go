// Package common defines shared constants and sentinel errors used across
// the layers of travelog. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. These are rejected before any store call.
	ErrNotAuthenticated = errors.New("login is required")
	ErrPhotoRequired    = errors.New("a photo must be selected")
	ErrEmptyComment     = errors.New("comment text is empty")
	ErrNotConfirmed     = errors.New("action was not confirmed")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrEmptyDisplayName = errors.New("display name is empty")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// IsValidation reports whether err is one of the validation errors that are
// surfaced to the user as a notice without touching any store.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrNotAuthenticated, ErrPhotoRequired, ErrEmptyComment,
		ErrNotConfirmed, ErrPasswordTooShort, ErrInvalidEmail,
		ErrEmptyDisplayName,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
