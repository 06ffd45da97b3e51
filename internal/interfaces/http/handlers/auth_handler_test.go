package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-fund.backend/internal/interfaces/http/middleware"
	"scholarship-fund.backend/internal/usecases"
	"scholarship-fund.backend/pkg/crypto"
	"scholarship-fund.backend/pkg/jwt"
	"scholarship-fund.backend/pkg/redis"
)

// hardhat account #0, the registry owner in these tests
const ownerKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const testSessionKey = "0000000000000000000000000000000000000000000000000000000000000000"

type failingSessions struct{}

func (failingSessions) CreateSession(context.Context, string, *redis.SessionData, time.Duration) error {
	return errors.New("redis down")
}

func useMiniredis(t *testing.T) {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	redis.SetClient(cli)
	t.Cleanup(func() {
		_ = cli.Close()
		srv.Close()
	})
}

func authRoutes(t *testing.T, f *handlerFixture, sessions SessionWriter) (*gin.Engine, *jwt.JWTService) {
	t.Helper()
	svc := jwt.NewJWTService("test-secret", time.Minute, time.Hour)
	store, err := redis.NewSessionStore(testSessionKey)
	require.NoError(t, err)
	if sessions == nil {
		sessions = store
	}
	h := NewAuthHandler(usecases.NewAuthUsecase(redis.NewChallengeStore(time.Minute), f.registry, svc), sessions, time.Minute)

	r := gin.New()
	auth := r.Group("/api/v1/auth")
	auth.GET("/challenge", h.Challenge)
	auth.POST("/verify", h.Verify)
	auth.POST("/refresh", h.Refresh)
	auth.GET("/me", middleware.AuthMiddleware(svc, store), h.GetMe)
	return r, svc
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signIn(t *testing.T, r *gin.Engine) map[string]interface{} {
	t.Helper()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/auth/challenge?address="+ownerAddr.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	message := decode(t, w)["message"].(string)

	key, err := crypto.ParsePrivateKey(ownerKeyHex)
	require.NoError(t, err)
	sig, err := crypto.SignMessage(message, key)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify",
		strings.NewReader(`{"address":"`+ownerAddr.Hex()+`","signature":"`+sig+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)
}

func TestAuthHandler_SignInSessionAndMe(t *testing.T) {
	useMiniredis(t)
	f := newHandlerFixture(t)
	r, _ := authRoutes(t, f, nil)

	auth := signIn(t, r)
	assert.Equal(t, "owner", auth["role"])
	sessionID, _ := auth["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(middleware.SessionHeader, sessionID)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode(t, w)
	assert.True(t, strings.EqualFold(ownerAddr.Hex(), me["address"].(string)))
	assert.Equal(t, "owner", me["role"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+auth["accessToken"].(string))
	require.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	useMiniredis(t)
	f := newHandlerFixture(t)
	r, svc := authRoutes(t, f, nil)

	pair, err := svc.GenerateTokenPair(annAddr.Hex(), "owner")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refreshToken":"`+pair.RefreshToken+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "student", decode(t, w)["role"])

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	require.Equal(t, http.StatusOK, serve(r, req).Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refreshToken":"`+pair.AccessToken+`"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAuthHandler_Rejections(t *testing.T) {
	useMiniredis(t)
	f := newHandlerFixture(t)
	r, _ := authRoutes(t, f, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/auth/challenge?address=nope", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify", strings.NewReader(`{"address":"`+annAddr.Hex()+`","signature":"0xdead"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "challenge not found")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify", strings.NewReader(`{"address":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusBadRequest, serve(r, req).Code)

	require.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)).Code)
}

func TestAuthHandler_SessionStoreFailureStillSignsIn(t *testing.T) {
	useMiniredis(t)
	f := newHandlerFixture(t)
	r, _ := authRoutes(t, f, failingSessions{})

	auth := signIn(t, r)
	assert.NotEmpty(t, auth["accessToken"])
	_, hasSession := auth["sessionId"]
	assert.False(t, hasSession)
}
