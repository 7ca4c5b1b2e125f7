package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jrsteele09/go-crm/internal/config"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, lookup and revocation
type Manager struct {
	repo   Repo
	config config.TokenConfig
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg config.TokenConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create generates a new refresh token for the user and stores it.
// Any previous token for the user is revoked (single refresh token per user).
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	if existing, err := m.repo.GetByUserID(ctx, userID); err == nil && existing != nil {
		if err := m.repo.Delete(ctx, existing.Token); err != nil && !crmerrors.Is(err, crmerrors.ErrNotFound) {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(ctx, &StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenStr, nil
}

// Get retrieves a refresh token, returning errors.ErrInvalidRefreshToken when it
// is unknown or expired.
func (m *Manager) Get(ctx context.Context, token string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(ctx, token)
	if crmerrors.Is(err, crmerrors.ErrNotFound) {
		return nil, crmerrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	if m.IsExpired(rt) {
		return nil, crmerrors.ErrInvalidRefreshToken
	}
	return rt, nil
}

// Revoke removes a refresh token. Unknown tokens are not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	err := m.repo.Delete(ctx, token)
	if crmerrors.Is(err, crmerrors.ErrNotFound) {
		return nil
	}
	return err
}

// IsExpired checks if a refresh token is older than the configured expiry
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetRefreshTokenExpiry()
}
