package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/billing"
	"github.com/pronoelite/pronoelite-api/internal/config"
	"github.com/pronoelite/pronoelite-api/internal/middleware"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

// maxWebhookBody matches the payload bound recommended by the provider.
const maxWebhookBody = 65536

// PaymentHandler serves the subscription checkout and its webhook.
type PaymentHandler struct {
	Cfg      config.Config
	Payments billing.Payments // nil when payments are not configured
	Billing  *billing.Service
	Users    *repository.UserRepo
	Log      *zap.Logger
}

func NewPaymentHandler(cfg config.Config, p billing.Payments, svc *billing.Service, users *repository.UserRepo, log *zap.Logger) *PaymentHandler {
	if svc == nil || users == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentHandler{Cfg: cfg, Payments: p, Billing: svc, Users: users, Log: log}
}

func (h *PaymentHandler) providerError(c echo.Context, err error) error {
	if errors.Is(err, billing.ErrNotConfigured) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments not configured"})
	}
	h.Log.Warn("payment provider failed", zap.Error(err))
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider error"})
}

// CreateCheckout handles POST /api/payment/create-checkout. A signed-in
// caller gets the email prefilled and the session tied to their account.
func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	if h.Payments == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments not configured"})
	}
	base := strings.TrimRight(h.Cfg.BaseURL, "/")
	req := billing.CheckoutRequest{
		SuccessURL: base + "/payment/success",
		CancelURL:  base + "/payment/cancel",
	}
	if id, ok := middleware.CurrentIdentity(c); ok {
		req.Email = id.Email
		req.UserID = id.UserID
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	url, err := h.Payments.CreateCheckout(ctx, req)
	if err != nil {
		return h.providerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// Portal handles POST /api/payment/portal for members with a billing
// account.
func (h *PaymentHandler) Portal(c echo.Context) error {
	if h.Payments == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments not configured"})
	}
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return serverError(c, h.Log, err)
	}
	if u.StripeCustomerID == nil || *u.StripeCustomerID == "" {
		return badRequest(c, "no billing account")
	}
	url, err := h.Payments.CreatePortal(ctx, *u.StripeCustomerID, strings.TrimRight(h.Cfg.BaseURL, "/")+"/")
	if err != nil {
		return h.providerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// Webhook handles POST /api/payment/webhook. Processing failures answer
// 500 so the provider redelivers the event.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	if h.Cfg.StripeWebhookSecret == "" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "webhook not configured"})
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(c, "unreadable body")
	}
	ev, err := billing.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"), h.Cfg.StripeWebhookSecret)
	if err != nil {
		h.Log.Warn("webhook rejected", zap.Error(err))
		return badRequest(c, "webhook error: "+err.Error())
	}
	res, err := h.Billing.Handle(c.Request().Context(), ev)
	if err != nil {
		return serverError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true, "result": res})
}

// WebhookTest handles GET /api/payment/webhook/test.
func (h *PaymentHandler) WebhookTest(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "webhook endpoint is working"})
}
