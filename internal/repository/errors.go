package repository

import "errors"

// Sentinel errors returned by repositories.  Handlers and services
// compare against these with errors.Is to decide the HTTP status.
var (
	// ErrEmailExists indicates a unique email constraint violation on insert.
	ErrEmailExists = errors.New("email already exists")
	// ErrUserNotFound indicates the requested user row does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrRestaurantNotFound indicates the requested restaurant row does not exist.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrReservationNotFound indicates the requested reservation row does not exist.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrItemNotFound indicates the requested menu item row does not exist.
	ErrItemNotFound = errors.New("menu item not found")
	// ErrAreaExists indicates a sitting area with the same key already exists.
	ErrAreaExists = errors.New("sitting area already exists")
	// ErrAreaNotFound indicates no active sitting area matches the key.
	ErrAreaNotFound = errors.New("sitting area not found")
	// ErrForbidden indicates the caller does not own the requested resource.
	ErrForbidden = errors.New("forbidden")
	// ErrResetInvalid indicates a password-reset token that is unknown or expired.
	ErrResetInvalid = errors.New("invalid or expired reset token")
	// ErrRefreshInvalid indicates a refresh token that is unknown, revoked or expired.
	ErrRefreshInvalid = errors.New("invalid refresh token")
)
