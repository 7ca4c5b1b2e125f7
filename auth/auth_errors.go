package auth

import (
	"errors"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

var (
	UserPasswordsDontMatchErr = errors.New("user passwords not matched")
	RefreshTokenOwnerErr      = errors.New("refresh token belongs to another user")
)

// ValidationError carries a user-facing reason a request was rejected.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == crmerrors.ErrInvalidRequest
}
