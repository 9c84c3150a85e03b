package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"devconnector/docs"
	"devconnector/internal/config"
	"devconnector/internal/middleware"
	"devconnector/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testEnv struct {
	srv *Server
	app *fiber.App
	mr  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Env:       "test",
		Port:      "0",
		JWTSecret: "test-secret-that-is-long-enough-for-hs256",
		JWTTTL:    time.Hour,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := NewServerWithDeps(testConfig(), testutil.NewSQLiteDB(t), rdb)
	require.NoError(t, err)
	return &testEnv{srv: srv, app: srv.App(), mr: mr}
}

// do sends body as JSON (or as-is when it is url.Values) and returns the
// status and raw response body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	contentType := fiber.MIMEApplicationJSON
	switch b := body.(type) {
	case nil:
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = fiber.MIMEApplicationForm
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, contentType)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, token)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) doMap(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := e.do(t, method, path, token, body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return status, out
}

// registerAndLogin creates an account and returns its bearer token.
func (e *testEnv) registerAndLogin(t *testing.T, name, email string) string {
	t.Helper()
	status, _ := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": name, "email": email, "password": "pw123456", "password2": "pw123456",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := e.doMap(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": email, "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.True(t, strings.HasPrefix(token, "Bearer "))
	return token
}

func TestSmokeRoutes(t *testing.T) {
	env := newTestEnv(t)

	for path, msg := range map[string]string{
		"/api/users/test":   "Users works",
		"/api/profile/test": "Profile works",
		"/api/posts/test":   "Posts works",
	} {
		status, body := env.doMap(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, msg, body["msg"])
	}
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doMap(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = env.doMap(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"database": "healthy", "redis": "healthy"}, body["checks"])
}

func TestReadiness_WithoutRedis(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	srv, err := NewServerWithDeps(testConfig(), testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)
	app := srv.App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "disabled", body["checks"].(map[string]any)["redis"])
}

func TestNewServerWithDeps_RequiresDB(t *testing.T) {
	_, err := NewServerWithDeps(testConfig(), nil, nil)
	assert.Error(t, err)
}

// Every API route must be described in the committed OpenAPI document.
func TestRoutesAreDocumented(t *testing.T) {
	env := newTestEnv(t)

	var doc struct {
		Paths map[string]map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(docs.YAML(), &doc))

	param := regexp.MustCompile(`:([a-z_]+)`)
	skip := regexp.MustCompile(`^/api/(swagger|users/test|profile/test|posts/test)`)

	for _, r := range env.app.GetRoutes(true) {
		if !strings.HasPrefix(r.Path, "/api/") || skip.MatchString(r.Path) {
			continue
		}
		if r.Method == fiber.MethodHead || r.Method == fiber.MethodOptions {
			continue
		}
		path := strings.TrimSuffix(strings.TrimPrefix(r.Path, "/api"), "/")
		path = param.ReplaceAllString(path, "{$1}")

		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "undocumented path %s", path) {
			_, ok = ops[strings.ToLower(r.Method)]
			assert.True(t, ok, "undocumented operation %s %s", r.Method, path)
		}
	}
}

func TestSwaggerDocRegistered(t *testing.T) {
	raw, err := docs.JSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/users/register")
}

func TestLoginFailPolicy(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	srv, err := NewServerWithDeps(testConfig(), testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)
	assert.Equal(t, middleware.FailLocal, srv.loginFailPolicy())

	cfg := testConfig()
	cfg.Env = "production"
	srv, err = NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)
	assert.Equal(t, middleware.FailClosed, srv.loginFailPolicy())
}

func TestLogin_FailsClosedInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	cfg := testConfig()
	cfg.Env = "production"
	srv, err := NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)
	env := &testEnv{srv: srv, app: srv.App()}

	status, _ := env.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456", "password2": "pw123456",
	})
	assert.Equal(t, http.StatusOK, status)

	status, body := env.doMap(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "rate limit unavailable", body["error"])
}
