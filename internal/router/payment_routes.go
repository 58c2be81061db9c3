package router

import (
	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/handler"
	"github.com/pronoelite/pronoelite-api/internal/middleware"
)

// RegisterPayment registers checkout, the billing portal and the provider
// webhook. The webhook authenticates by signature, not by credential.
func RegisterPayment(e *echo.Echo, p *handler.PaymentHandler, jwtSecret string) {
	g := e.Group("/api/payment")
	g.POST("/create-checkout", p.CreateCheckout, middleware.OptionalJWT(jwtSecret))
	g.POST("/portal", p.Portal, middleware.JWTAuth(jwtSecret))
	g.POST("/webhook", p.Webhook)
	g.GET("/webhook/test", p.WebhookTest)
}
