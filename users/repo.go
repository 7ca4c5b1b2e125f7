package users

import (
	"context"
	"time"
)

// UserRepo stores accounts. Implementations return errors.ErrUserExists when
// inserting a duplicate email and errors.ErrUserNotFound on a missed lookup.
type UserRepo interface {
	Insert(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}
