package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/jrsteele09/go-crm/internal/config"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"PORT", "APP_NAME", "ENV", "LOG_LEVEL", "ALLOWED_ORIGINS",
	"JWT_SECRET", "ACCESS_TOKEN_EXPIRY", "REFRESH_TOKEN_LENGTH", "REFRESH_TOKEN_EXPIRY",
	"MONGODB_URI", "MONGODB_DATABASE", "MONGODB_CONNECT_TIMEOUT", "REDIS_ADDR", "REDIS_PASSWORD", "COUNT_CACHE_TTL",
	"CRM_API_URL", "CRM_CREDENTIALS_DIR", "CRM_POLL_INTERVAL", "CRM_REQUEST_TIMEOUT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestNewDefaults(t *testing.T) {
	clearEnv(t)

	c, err := config.New("testdata/does-not-exist.env")
	require.NoError(t, err)

	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:3000", c.GetAPIBaseURL())
	require.Equal(t, 30*time.Second, c.GetPollInterval())
	require.Equal(t, time.Hour, c.GetAccessTokenExpiry())
	require.Equal(t, 32, c.GetRefreshTokenLength())
	require.Equal(t, "crm", c.GetMongoDatabase())
	require.Empty(t, c.GetRedisAddr())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:5173"))
}

func TestNewFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://crm.example.com, https://admin.example.com")
	t.Setenv("CRM_POLL_INTERVAL", "5s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := config.New("testdata/does-not-exist.env")
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 5*time.Second, c.GetPollInterval())
	require.Equal(t, "localhost:6379", c.GetRedisAddr())
	require.Equal(t, []byte("s3cret"), c.GetJWTSecret())

	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://crm.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://admin.example.com"))
	require.False(t, origins.IsAllowedOrigin("http://localhost:5173"))
}

func TestNewRejectsInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRM_POLL_INTERVAL", "soon")

	_, err := config.New("testdata/does-not-exist.env")
	require.Error(t, err)
}
