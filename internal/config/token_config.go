package config

import "time"

type TokenConfig interface {
	GetJWTSecret() []byte
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetRefreshTokenExpiry() time.Duration
}

type Token struct {
	JWTSecret          string        `env:"JWT_SECRET" env-default:"change-this-secret-in-production" env-description:"HMAC secret for access tokens"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" env-default:"1h"`
	RefreshTokenLength int           `env:"REFRESH_TOKEN_LENGTH" env-default:"32" env-description:"Refresh token entropy in bytes"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" env-default:"168h"`
}

var _ TokenConfig = Token{}

func (t Token) GetJWTSecret() []byte {
	return []byte(t.JWTSecret)
}

func (t Token) GetAccessTokenExpiry() time.Duration {
	return t.AccessTokenExpiry
}

func (t Token) GetRefreshTokenLength() int {
	if t.RefreshTokenLength <= 0 {
		return 32 // 32 bytes = 256 bits
	}
	return t.RefreshTokenLength
}

func (t Token) GetRefreshTokenExpiry() time.Duration {
	return t.RefreshTokenExpiry
}
