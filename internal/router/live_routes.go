package router

import (
	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/handler"
)

// RegisterLiveMatches registers the manual live match list. The routes are
// open, so the whole group sits behind the rate limiter.
func RegisterLiveMatches(e *echo.Echo, l *handler.LiveMatchHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/live-matches", limiter)
	g.POST("/add", l.Add)
	g.GET("", l.List)
	g.PUT("/:id", l.Update)
	g.DELETE("/:id", l.Delete)
	g.DELETE("", l.Clear)
}
