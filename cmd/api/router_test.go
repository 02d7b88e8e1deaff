package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-backend/internal/auth/credential"
	authRepo "todo-backend/internal/auth/repository"
	authUsecase "todo-backend/internal/auth/usecase"
	"todo-backend/internal/auth/token"
	todoRepo "todo-backend/internal/todo/repository"
	todoUsecase "todo-backend/internal/todo/usecase"
	"todo-backend/pkg/config"
	"todo-backend/pkg/cookie"
	"todo-backend/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.GinMode = gin.TestMode
	cfg.StorageDriver = config.StorageDriverMemory
	cfg.AccessTokenSecret = "access-secret"
	cfg.RefreshTokenSecret = "refresh-secret"
	cfg.BcryptCost = bcrypt.MinCost
	cfg.Cookie.Secure = false
	require.NoError(t, cfg.Validate())

	log := logging.Nop()
	users := authRepo.NewMemoryUserRepository()
	tokens := token.NewService(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshTTL:    cfg.RefreshTokenExpiry,
	})
	authUc := authUsecase.NewAuthUsecase(users, credential.NewBcryptHasher(cfg.BcryptCost), tokens, log)
	todoUc := todoUsecase.NewTodoUsecase(todoRepo.NewMemoryTodoRepository(), users, log)

	return &testServer{t: t, router: NewHandler(authUc, todoUc, cfg, log).Router()}
}

func (s *testServer) do(method, path string, body any, cookies []*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (s *testServer) register(name string) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/users/register-user", map[string]string{
		"userName": name,
		"fullName": name + " Example",
		"email":    name + "@example.com",
		"password": "pw-" + name,
	}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, env.Message)
}

func (s *testServer) login(name string) (map[string]any, []*http.Cookie) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/users/login-user", map[string]string{
		"userName": name,
		"password": "pw-" + name,
	}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, env.Message)

	var user map[string]any
	require.NoError(s.t, json.Unmarshal(env.Data, &user))
	return user, w.Result().Cookies()
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAliceAndBobScenario(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	s.register("bob")

	alice, aliceCookies := s.login("alice")
	require.Len(t, aliceCookies, 2)
	access := cookieNamed(aliceCookies, cookie.AccessTokenName)
	refresh := cookieNamed(aliceCookies, cookie.RefreshTokenName)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.NotContains(t, alice, "password")
	assert.NotContains(t, alice, "refreshToken")

	w, env := s.do(http.MethodPost, "/api/v1/todos/add-todo", map[string]string{"todoContent": "buy milk"}, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var todo map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &todo))
	assert.Equal(t, alice["id"], todo["user"])
	todoID := todo["id"].(string)

	// anyone can read a todo
	w, env = s.do(http.MethodGet, "/api/v1/todos/get-todo/"+todoID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "alice", view["userName"])

	_, bobCookies := s.login("bob")
	w, env = s.do(http.MethodPatch, "/api/v1/todos/update-todo/"+todoID, map[string]string{"todoContent": "hijacked"}, bobCookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "unauthorised request", env.Message)

	w, _ = s.do(http.MethodDelete, "/api/v1/todos/delete-todo/"+todoID, nil, bobCookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPatch, "/api/v1/todos/update-todo/"+todoID, map[string]any{"todoContent": "buy oat milk", "done": true}, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, env = s.do(http.MethodGet, "/api/v1/todos/get-all-todos?done=true", nil, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var list struct {
		Todos []map[string]any `json:"todos"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, "buy oat milk", list.Todos[0]["todoContent"])

	w, env = s.do(http.MethodGet, "/api/v1/todos/search-todos?q=oat", nil, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var results []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.Len(t, results, 1)

	w, env = s.do(http.MethodGet, "/api/v1/todos/search-todos?q=oat", nil, bobCookies)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.Empty(t, results)
}

func TestProtectedTodoRoutesRequireIdentity(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/api/v1/todos/add-todo", map[string]string{"todoContent": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user not logged in", env.Message)

	w, _ = s.do(http.MethodGet, "/api/v1/todos/get-all-todos", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	_, cookies := s.login("alice")
	oldRefresh := cookieNamed(cookies, cookie.RefreshTokenName)

	// only the refresh cookie: identity comes from the stored-token fallback
	w, env := s.do(http.MethodPost, "/api/v1/users/refresh-access-token", nil, []*http.Cookie{oldRefresh})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	rotated := w.Result().Cookies()
	newRefresh := cookieNamed(rotated, cookie.RefreshTokenName)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)
	assert.NotNil(t, cookieNamed(rotated, cookie.AccessTokenName))

	// the superseded refresh token no longer resolves a session
	w, env = s.do(http.MethodPost, "/api/v1/users/refresh-access-token", nil, []*http.Cookie{oldRefresh})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, env = s.do(http.MethodGet, "/api/v1/users/get-current-user", nil, []*http.Cookie{newRefresh})
	assert.Equal(t, http.StatusOK, w.Code, env.Message)
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	_, cookies := s.login("alice")

	w, env := s.do(http.MethodPost, "/api/v1/users/logout-user", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	for _, c := range w.Result().Cookies() {
		assert.Empty(t, c.Value, c.Name)
		assert.True(t, c.MaxAge < 0 || c.Expires.Before(time.Now()), c.Name)
	}

	// the access token is still signed, but the stored session is gone
	w, env = s.do(http.MethodPost, "/api/v1/users/refresh-access-token", nil, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "refresh token expired or used.", env.Message)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login-user", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
