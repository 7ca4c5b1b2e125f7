package refreshrepofake

import (
	"context"
	"sync"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/token/refresh"
	"github.com/pkg/errors"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens  map[string]*refresh.StoredRefreshToken
	userIDs map[string]string // user ID to token
	lock    sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens:  make(map[string]*refresh.StoredRefreshToken),
		userIDs: make(map[string]string),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(_ context.Context, refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	stored := *refreshToken
	tr.tokens[refreshToken.Token] = &stored
	tr.userIDs[refreshToken.UserID] = refreshToken.Token
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	rt, ok := tr.tokens[token]
	if !ok {
		return errors.Wrapf(crmerrors.ErrNotFound, "refresh token")
	}
	if tr.userIDs[rt.UserID] == token {
		delete(tr.userIDs, rt.UserID)
	}
	delete(tr.tokens, token)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, token string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[token]
	if !ok {
		return nil, errors.Wrapf(crmerrors.ErrNotFound, "refresh token")
	}
	stored := *rt
	return &stored, nil
}

func (tr *FakeRefreshTokenRepo) GetByUserID(_ context.Context, userID string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	token, ok := tr.userIDs[userID]
	if !ok {
		return nil, errors.Wrapf(crmerrors.ErrNotFound, "refresh token for user %s", userID)
	}
	stored := *tr.tokens[token]
	return &stored, nil
}

// Len returns the number of stored tokens.
func (tr *FakeRefreshTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}
