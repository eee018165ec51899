package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/sessions"
	"github.com/profilekit/profilekit/internal/tokens"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *users.MemoryRepository, *tokens.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := users.NewMemoryRepository()
	ts := tokens.NewService("handlers-test-secret-32-bytes-xxxx")
	svc := users.NewService(repo, ts)

	r := gin.New()
	NewAuthHandler(svc, ts).Register(r.Group("/"))
	return r, repo, ts
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_CreatesUserWithoutPassword(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"p1","username":"a","name":"Alice"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "a@x.com", got["email"])
	require.Equal(t, "a", got["username"])
	require.NotContains(t, got, "password")
}

func TestRegister_MissingAndConflict(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"p1","username":"a"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate email surfaces the conflict detail
	w = doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"p2","username":"b"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "details")
}

func TestLoginScenario(t *testing.T) {
	r, _, ts := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"p1","username":"a"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// wrong password
	w = doJSON(t, r, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"wrong"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Password is incorrect")

	// unknown email
	w = doJSON(t, r, http.MethodPost, "/api/login", `{"email":"nobody@x.com","password":"p1"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "No user with email exist")

	// missing fields
	w = doJSON(t, r, http.MethodPost, "/api/login", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	// correct credentials return a verifiable token
	w = doJSON(t, r, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := ts.Verify(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)
	require.False(t, claims.IsAdmin)
	// 14-day login tokens
	require.InDelta(t, float64(tokens.LoginTTL), float64(time.Until(claims.ExpiresAt.Time)), float64(time.Minute))
}

func TestLogout(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Logged out successfully")
}

func TestLogout_BlacklistsToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer sessions.SetBlacklistClient(nil)

	r, _, _ := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"p1","username":"a"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	req := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	black, err := sessions.IsTokenBlacklisted(context.Background(), resp.Token)
	require.NoError(t, err)
	require.True(t, black)
}

func TestDashboard(t *testing.T) {
	r, _, ts := newAuthRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/dashboard?token=garbage", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := ts.IssueClaims(&tokens.Claims{Email: "d@x.com"}, tokens.OAuthTTL)
	require.NoError(t, err)
	w = doJSON(t, r, http.MethodGet, "/api/dashboard?token="+tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Welcome to the dashboard!")
}
