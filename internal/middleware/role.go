package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/utils"
)

// RequireAdmin lets through only credentials carrying the admin flag. It
// must be chained after JWTAuth; an authenticated caller without the flag
// gets 403 Forbidden.
func RequireAdmin() echo.MiddlewareFunc {
	return requireFlag(func(id utils.Identity) bool { return id.IsAdmin })
}

// RequireVIP lets through VIP members and administrators.
func RequireVIP() echo.MiddlewareFunc {
	return requireFlag(func(id utils.Identity) bool { return id.IsVIP || id.IsAdmin })
}

func requireFlag(allowed func(utils.Identity) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				// JWTAuth was not chained before this middleware
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			if !allowed(id) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
