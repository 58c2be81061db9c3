package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/middleware"
	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

// UserHandler lets a signed-in user read and rename their own account.
type UserHandler struct {
	Users *repository.UserRepo
	Log   *zap.Logger
}

func NewUserHandler(users *repository.UserRepo, log *zap.Logger) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{Users: users, Log: log}
}

type profileView struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsVIP     bool      `json:"isVIP"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewOf(u *model.User) profileView {
	return profileView{Username: u.Username, Email: u.Email, IsVIP: u.IsVIP, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}
}

// Profile handles GET /api/user/profile with the stored record, which may
// be fresher than the credential's claims.
func (h *UserHandler) Profile(c echo.Context) error {
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
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": viewOf(u)})
}

// UpdateUsername handles POST /api/user/update-username.
func (h *UserHandler) UpdateUsername(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var body struct {
		Username string `json:"username"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name := strings.TrimSpace(body.Username)
	if utf8.RuneCountInString(name) < 2 {
		return badRequest(c, "username must be at least 2 characters")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.UpdateUsername(ctx, id.UserID, name); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return serverError(c, h.Log, err)
	}
	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		return serverError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "username updated", "user": viewOf(u)})
}
