package credentials

import (
	"fmt"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

// PersistenceError reports that the backing store could not be read or written.
type PersistenceError struct {
	Op  string // load, save or clear
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("credentials %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == crmerrors.ErrPersistence
}
