package router

import (
	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/handler"
	"github.com/pronoelite/pronoelite-api/internal/middleware"
)

// RegisterTips registers the tip catalog. Reading public tips is open and
// rate limited, VIP tips need a VIP or admin credential, and every write is
// admin only.
func RegisterTips(e *echo.Echo, t *handler.TipHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/pronos")
	g.GET("/public", t.Public, limiter)
	g.GET("/vip", t.VIP, middleware.JWTAuth(jwtSecret), middleware.RequireVIP())

	admin := g.Group("", middleware.JWTAuth(jwtSecret), middleware.RequireAdmin())
	admin.GET("/all", t.All)
	admin.POST("/add", t.Create)
	admin.PUT("/:id", t.Update)
	admin.DELETE("/:id", t.Delete)
}

// RegisterHistory registers the archive and its statistics, all public.
func RegisterHistory(e *echo.Echo, h *handler.HistoryHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/history", limiter)
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/stats/leagues", h.Leagues)
	g.GET("/stats/monthly", h.Monthly)
}

// RegisterMatches registers the fixture endpoints. Settlement and the
// advisory verdict are admin only.
func RegisterMatches(e *echo.Echo, m *handler.MatchHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/matches")
	g.GET("", m.List, limiter)
	g.GET("/stats", m.Stats, limiter)
	g.GET("/live", m.Live, limiter)

	admin := g.Group("", middleware.JWTAuth(jwtSecret), middleware.RequireAdmin())
	admin.PUT("/:id/result", m.SetResult)
	admin.POST("/:id/suggest", m.Suggest)
}
