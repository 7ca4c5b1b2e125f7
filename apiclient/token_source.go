package apiclient

import (
	"github.com/jrsteele09/go-crm/credentials"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"golang.org/x/oauth2"
)

// SessionLoader is satisfied by *credentials.Store.
type SessionLoader interface {
	Load() (credentials.Session, bool, error)
}

// StoreTokenSource reads the bearer token from the stored session on every call,
// so a re-login is picked up without rebuilding the client.
type StoreTokenSource struct {
	Sessions SessionLoader
}

var _ oauth2.TokenSource = StoreTokenSource{}

func (s StoreTokenSource) Token() (*oauth2.Token, error) {
	session, ok, err := s.Sessions.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, crmerrors.Wrapf(crmerrors.ErrInvalidToken, "no stored session")
	}
	return &oauth2.Token{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
