package authflow

import (
	"fmt"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

// FailureKind classifies why a submission failed.
type FailureKind int

const (
	// ServerRejected means the server answered with a message meant for the user
	ServerRejected FailureKind = iota + 1
	// NetworkOrUnknown covers transport failures and unexpected response shapes
	NetworkOrUnknown
)

func (k FailureKind) String() string {
	switch k {
	case ServerRejected:
		return "server rejected"
	case NetworkOrUnknown:
		return "network or unknown"
	default:
		return "unknown"
	}
}

// Failure is returned by a failed login or signup. Message is the text shown to the user.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) Is(target error) bool {
	switch f.Kind {
	case ServerRejected:
		return target == crmerrors.ErrServerRejected
	case NetworkOrUnknown:
		return target == crmerrors.ErrNetworkOrUnknown
	}
	return false
}
