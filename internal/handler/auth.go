package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/config"
	"github.com/pronoelite/pronoelite-api/internal/identity"
	"github.com/pronoelite/pronoelite-api/internal/middleware"
	"github.com/pronoelite/pronoelite-api/internal/utils"
)

const stateCookie = "oauth_state"

// AuthHandler runs the provider login and issues credentials.
type AuthHandler struct {
	Cfg       config.Config
	Provider  identity.Provider // nil when login is not configured
	Provision *identity.Provisioner
	Log       *zap.Logger
}

func NewAuthHandler(cfg config.Config, p identity.Provider, pv *identity.Provisioner, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Cfg: cfg, Provider: p, Provision: pv, Log: log}
}

// identityView is the public shape of a credential holder.
type identityView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsVIP    bool   `json:"isVIP"`
	IsAdmin  bool   `json:"isAdmin"`
}

// GoogleLogin handles GET /auth/google.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	if h.Provider == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "login provider not configured"})
	}
	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.Cfg.Env != "local",
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.Provider.AuthCodeURL(state))
}

// GoogleCallback handles GET /auth/google/callback: it checks the state,
// provisions the account and redirects to the front with a credential.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if h.Provider == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "login provider not configured"})
	}
	ck, err := c.Cookie(stateCookie)
	if err != nil || ck.Value == "" || ck.Value != c.QueryParam("state") {
		return badRequest(c, "invalid oauth state")
	}
	c.SetCookie(&http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true})

	code := c.QueryParam("code")
	if code == "" {
		h.Log.Info("login cancelled", zap.String("reason", c.QueryParam("error")))
		return c.Redirect(http.StatusFound, h.front("/"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	profile, err := h.Provider.Identify(ctx, code)
	if err != nil {
		h.Log.Warn("login exchange failed", zap.Error(err))
		return c.Redirect(http.StatusFound, h.front("/?error=login_failed"))
	}
	user, err := h.Provision.Provision(ctx, profile)
	if err != nil {
		return serverError(c, h.Log, err)
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsVIP:    user.IsVIP,
		IsAdmin:  user.IsAdmin,
	}, h.Cfg.TokenTTL)
	if err != nil {
		return serverError(c, h.Log, err)
	}
	h.Log.Info("login", zap.String("user_id", user.ID))
	return c.Redirect(http.StatusFound, h.front("/?token="+url.QueryEscape(tok.Token)))
}

// Logout handles GET /auth/logout. Credentials are stateless, so the client
// simply drops its token.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.front("/"))
}

// Me handles GET /api/me and echoes the credential's claims.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": identityView{
		ID:       id.UserID,
		Username: id.Username,
		Email:    id.Email,
		IsVIP:    id.IsVIP,
		IsAdmin:  id.IsAdmin,
	}})
}

func (h *AuthHandler) front(path string) string {
	return strings.TrimRight(h.Cfg.BaseURL, "/") + path
}
