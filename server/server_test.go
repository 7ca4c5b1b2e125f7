package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/go-crm/apiclient"
	"github.com/jrsteele09/go-crm/auth"
	crmrepofake "github.com/jrsteele09/go-crm/crm/repofake"
	"github.com/jrsteele09/go-crm/internal/config"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/server"
	"github.com/jrsteele09/go-crm/token"
	"github.com/jrsteele09/go-crm/token/jwt"
	"github.com/jrsteele09/go-crm/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-crm/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/go-crm/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin   = "http://localhost:5173"
	testName     = "John Doe"
	testEmail    = "john.doe@example.com"
	testPassword = "Password123"
)

type testFixture struct {
	server      *server.Server
	leads       *crmrepofake.FakeLeadRepo
	employees   *crmrepofake.FakeEmployeeRepo
	refreshRepo *refreshrepofake.FakeRefreshTokenRepo
}

func setupTestFixture(t *testing.T, options ...server.ServerOption) *testFixture {
	t.Helper()

	t.Setenv("ENV", "TEST")
	t.Setenv("ALLOWED_ORIGINS", testOrigin)
	t.Setenv("JWT_SECRET", "test-secret")
	cfg, err := config.New("testdata/does-not-exist.env")
	require.NoError(t, err)

	rr := refreshrepofake.NewFakeRefreshTokenRepo()
	accounts, err := auth.NewAccountService(
		fakeuserrepo.NewFakeUserRepo(),
		jwt.NewCreator(cfg, token.NewHMACSigner(cfg.GetJWTSecret())),
		refresh.NewManager(rr, cfg),
	)
	require.NoError(t, err)

	f := &testFixture{
		leads:       crmrepofake.NewFakeLeadRepo(),
		employees:   crmrepofake.NewFakeEmployeeRepo(),
		refreshRepo: rr,
	}
	f.server, err = server.New(cfg, accounts, server.Repos{Leads: f.leads, Employees: f.employees}, options...)
	require.NoError(t, err)
	return f
}

func (f *testFixture) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func bearer(accessToken string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + accessToken}}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (f *testFixture) signupAndLogin(t *testing.T) apiclient.LoginResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, server.RouteAPISignup, apiclient.SignupRequest{Name: testName, Email: testEmail, Password: testPassword}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, server.RouteAPILogin, apiclient.LoginRequest{Email: testEmail, Password: testPassword}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[apiclient.LoginResponse](t, rec)
}

func TestSignup(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteAPISignup, apiclient.SignupRequest{Name: testName, Email: testEmail, Password: testPassword}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[apiclient.SignupResponse](t, rec)
	require.Equal(t, "User registered successfully", resp.Message)
	require.Contains(t, string(resp.User), testEmail)
	require.NotContains(t, string(resp.User), "password")

	rec = f.do(t, http.MethodPost, server.RouteAPISignup, apiclient.SignupRequest{Name: testName, Email: testEmail, Password: testPassword}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, map[string]string{"error": "User already exists"}, decode[map[string]string](t, rec))

	rec = f.do(t, http.MethodPost, server.RouteAPISignup, apiclient.SignupRequest{Name: testName, Email: "other@example.com", Password: "weak"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "password must be at least 8 characters long", decode[map[string]string](t, rec)["error"])
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	resp := f.signupAndLogin(t)

	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Contains(t, string(resp.User), `"email":"john.doe@example.com"`)

	t.Run("wire field names", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, server.RouteAPILogin, apiclient.LoginRequest{Email: testEmail, Password: testPassword}, nil)
		raw := decode[map[string]json.RawMessage](t, rec)
		require.Contains(t, raw, "AccessToken")
		require.Contains(t, raw, "refreshToken")
		require.Contains(t, raw, "user")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, server.RouteAPILogin, apiclient.LoginRequest{Email: testEmail, Password: "nope"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, map[string]string{"message": "Invalid credentials"}, decode[map[string]string](t, rec))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, server.RouteAPILogin, bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCountsAndCreate(t *testing.T) {
	f := setupTestFixture(t)
	login := f.signupAndLogin(t)

	rec := f.do(t, http.MethodGet, server.RouteAPILeadsCount, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, decode[apiclient.CountResponse](t, rec).Count)

	rec = f.do(t, http.MethodPost, server.RouteAPILeads, apiclient.LeadRequest{Name: "Acme"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "creating records requires a token")

	rec = f.do(t, http.MethodPost, server.RouteAPILeads, apiclient.LeadRequest{Name: "Acme"}, bearer(login.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "new", decode[map[string]any](t, rec)["status"])

	rec = f.do(t, http.MethodPost, server.RouteAPIEmployees, apiclient.EmployeeRequest{Name: "Sam"}, bearer(login.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, server.RouteAPIEmployees, apiclient.EmployeeRequest{Name: " "}, bearer(login.AccessToken))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, server.RouteAPILeadsCount, nil, nil)
	require.Equal(t, 1, decode[apiclient.CountResponse](t, rec).Count)
	rec = f.do(t, http.MethodGet, server.RouteAPIEmployeesCount, nil, nil)
	require.Equal(t, 1, decode[apiclient.CountResponse](t, rec).Count)
}

func TestCountFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.employees.CountErr = crmerrors.ErrInternal

	rec := f.do(t, http.MethodGet, server.RouteAPIEmployeesCount, nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to fetch count", decode[map[string]string](t, rec)["message"])
}

func TestInvalidBearerToken(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteAPILeads, apiclient.LeadRequest{Name: "Acme"}, bearer("garbage"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token", decode[map[string]string](t, rec)["message"])

	rec = f.do(t, http.MethodPost, server.RouteAPILeads, apiclient.LeadRequest{Name: "Acme"}, http.Header{"Authorization": []string{"Basic abc"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	login := f.signupAndLogin(t)
	require.Equal(t, 1, f.refreshRepo.Len())

	rec := f.do(t, http.MethodPost, server.RouteAPILogout, apiclient.LogoutRequest{RefreshToken: login.RefreshToken}, bearer(login.AccessToken))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 0, f.refreshRepo.Len())
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodOptions, server.RouteAPILogin, nil, http.Header{"Origin": []string{testOrigin}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	rec = f.do(t, http.MethodOptions, server.RouteAPILogin, nil, http.Header{"Origin": []string{"http://evil.example"}})
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(t, http.MethodGet, server.RouteHealth, nil, http.Header{"Origin": []string{testOrigin}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

type recordingCache struct {
	mu          sync.Mutex
	counts      map[string]int64
	invalidated []string
}

func (c *recordingCache) Count(ctx context.Context, name string, load func(context.Context) (int64, error)) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.counts[name]; ok {
		return n, nil
	}
	return load(ctx)
}

func (c *recordingCache) Invalidate(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, name)
	c.invalidated = append(c.invalidated, name)
	return nil
}

func TestCountCache(t *testing.T) {
	cache := &recordingCache{counts: map[string]int64{"leads": 42}}
	f := setupTestFixture(t, server.WithCountCache(cache))
	login := f.signupAndLogin(t)

	rec := f.do(t, http.MethodGet, server.RouteAPILeadsCount, nil, nil)
	require.Equal(t, 42, decode[apiclient.CountResponse](t, rec).Count)

	rec = f.do(t, http.MethodPost, server.RouteAPILeads, apiclient.LeadRequest{Name: "Acme"}, bearer(login.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, []string{"leads"}, cache.invalidated)

	rec = f.do(t, http.MethodGet, server.RouteAPILeadsCount, nil, nil)
	require.Equal(t, 1, decode[apiclient.CountResponse](t, rec).Count)
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, f.server.RecoverMiddleware)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg, err := config.New("testdata/does-not-exist.env")
	require.NoError(t, err)

	_, err = server.New(cfg, nil, server.Repos{})
	require.Error(t, err)
}
