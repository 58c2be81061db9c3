package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/config"
	"github.com/pronoelite/pronoelite-api/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, id utils.Identity) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, time.Hour)
	require.NoError(t, err)
	return tok.Token
}

func newServer() *echo.Echo {
	e := echo.New()
	ok := func(c echo.Context) error {
		id, _ := CurrentIdentity(c)
		return c.String(http.StatusOK, id.UserID)
	}
	e.GET("/vip", ok, JWTAuth(secret), RequireVIP())
	e.GET("/admin", ok, JWTAuth(secret), RequireAdmin())
	e.GET("/optional", ok, OptionalJWT(secret))
	e.GET("/unguarded-role", ok, RequireAdmin())
	return e
}

func do(e *echo.Echo, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAccessControl(t *testing.T) {
	e := newServer()
	member := token(t, utils.Identity{UserID: "member"})
	vip := token(t, utils.Identity{UserID: "vip", IsVIP: true})
	admin := token(t, utils.Identity{UserID: "admin", IsAdmin: true})
	expired, err := utils.NewAccessToken(secret, utils.Identity{UserID: "vip", IsVIP: true}, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
		body   string
	}{
		{"vip route without bearer", "/vip", "", http.StatusUnauthorized, `{"error":"unauthenticated"}`},
		{"vip route with basic auth", "/vip", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, `{"error":"unauthenticated"}`},
		{"vip route with garbage", "/vip", "Bearer nope", http.StatusUnauthorized, `{"error":"invalid credential"}`},
		{"vip route with expired vip", "/vip", "Bearer " + expired.Token, http.StatusUnauthorized, `{"error":"invalid credential"}`},
		{"vip route with member", "/vip", "Bearer " + member, http.StatusForbidden, `{"error":"forbidden"}`},
		{"vip route with vip", "/vip", "Bearer " + vip, http.StatusOK, "vip"},
		{"vip route with admin", "/vip", "bearer " + admin, http.StatusOK, "admin"},
		{"admin route with vip", "/admin", "Bearer " + vip, http.StatusForbidden, `{"error":"forbidden"}`},
		{"admin route with admin", "/admin", "Bearer " + admin, http.StatusOK, "admin"},
		{"optional without bearer", "/optional", "", http.StatusOK, ""},
		{"optional with bad bearer", "/optional", "Bearer nope", http.StatusOK, ""},
		{"optional with member", "/optional", "Bearer " + member, http.StatusOK, "member"},
		{"role guard without jwt", "/unguarded-role", "Bearer " + admin, http.StatusUnauthorized, `{"error":"unauthenticated"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.path, tt.auth)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				require.Equal(t, tt.body, rec.Body.String())
			} else {
				require.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestTokenBucketWithoutRedisPassesThrough(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, zap.NewNop())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, mw)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusNoContent, do(e, "/", "").Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/history")

	require.Equal(t, "rl:ip:10.0.0.1:route:GET /api/history",
		buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))

	setIdentity(c, utils.Identity{UserID: "u1"})
	require.Equal(t, "rl:user:u1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestRequestLoggerDoesNotAlterResponse(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zap.NewNop()))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	rec := do(e, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pong", rec.Body.String())
}
