package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server-side record of a refresh token.
// The client only receives the Token field.
type StoredRefreshToken struct {
	Token  string    `bson:"_id"`
	UserID string    `bson:"user_id"`
	Iat    time.Time `bson:"iat"`
}

// Repo manages server-side storage of refresh tokens, keyed by the token string.
// Lookups that miss return errors.ErrNotFound.
type Repo interface {
	Upsert(ctx context.Context, refreshToken *StoredRefreshToken) error
	Delete(ctx context.Context, token string) error
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	GetByUserID(ctx context.Context, userID string) (*StoredRefreshToken, error)
}
