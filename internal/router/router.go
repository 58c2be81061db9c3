package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/database"
	"github.com/pronoelite/pronoelite-api/internal/handler"
	"github.com/pronoelite/pronoelite-api/internal/metrics"
	"github.com/pronoelite/pronoelite-api/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and the Prometheus exposition.
func RegisterRoutes(e *echo.Echo, db *database.DB) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
	e.GET("/metrics", metrics.Handler())
}

// RegisterAuth registers the login flow under /auth and the account
// endpoints under /api, which require a credential.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.GET("/google", a.GoogleLogin)
	g.GET("/google/callback", a.GoogleCallback)
	g.GET("/logout", a.Logout)

	auth := middleware.JWTAuth(jwtSecret)
	e.GET("/api/me", a.Me, auth)

	user := e.Group("/api/user", auth)
	user.GET("/profile", u.Profile)
	user.POST("/update-username", u.UpdateUsername)
}
