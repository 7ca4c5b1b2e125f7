package errors

import (
	"errors"
	"fmt"
)

// Common error types for the CRM server and client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Client-side errors
	ErrServerRejected       = errors.New("server rejected request")
	ErrNetworkOrUnknown     = errors.New("network or unknown failure")
	ErrPersistence          = errors.New("credential persistence failure")
	ErrPartialSnapshot      = errors.New("partial snapshot failure")
	ErrSubmissionInProgress = errors.New("submission already in progress")

	// General errors
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInternal        = errors.New("internal error")
	ErrDatabaseConnect = errors.New("database connection failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
