package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-crm/internal/config"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/token"
	"github.com/jrsteele09/go-crm/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// AccessClaims are the verified claims carried by an access token.
type AccessClaims struct {
	Subject   string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Creator handles access token creation and verification
type Creator struct {
	config config.TokenConfig
	signer token.Signer
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.TokenConfig, signer token.Signer) *Creator {
	return &Creator{
		config: cfg,
		signer: signer,
	}
}

// CreateAccessToken creates a signed access token for the user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub":   user.ID,                                          // Subject: the user the token was issued to
		"email": user.Email,                                       // Login email at issue time
		"iat":   now.Unix(),                                       // Issued At: the time at which the token was issued
		"exp":   now.Add(c.config.GetAccessTokenExpiry()).Unix(), // Expiry: when the token will expire
		"jti":   uuid.New().String(),                              // Unique token ID
	}

	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}

// Verify parses the token, checks its signature and expiry, and returns its claims.
func (c *Creator) Verify(tokenStr string) (*AccessClaims, error) {
	parsed, err := jwtlib.Parse(tokenStr, c.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		if crmerrors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, crmerrors.ErrTokenExpired
		}
		return nil, crmerrors.Wrapf(crmerrors.ErrInvalidToken, "%v", err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, crmerrors.ErrInvalidToken
	}

	sub, _ := mapClaims.GetSubject()
	if sub == "" {
		return nil, crmerrors.Wrapf(crmerrors.ErrInvalidToken, "missing subject")
	}
	claims := &AccessClaims{Subject: sub}
	claims.Email, _ = mapClaims["email"].(string)
	claims.TokenID, _ = mapClaims["jti"].(string)
	if iat, _ := mapClaims.GetIssuedAt(); iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, _ := mapClaims.GetExpirationTime(); exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
