package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer credential and
// stores the identity it carries in the request context. A request without
// a bearer is unauthenticated; one whose credential is malformed, expired or
// signed with another key is rejected as an invalid credential. Both are
// answered with 401 before any handler runs.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credential"})
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// OptionalJWT decodes a bearer credential when one is present and valid but
// never rejects the request. Handlers use CurrentIdentity to tell the cases
// apart.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				if id, err := utils.ParseAccessToken(secret, raw); err == nil {
					setIdentity(c, id)
				}
			}
			return next(c)
		}
	}
}

// bearer extracts the token of an "Authorization: Bearer <token>" header.
func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(auth[len(prefix):])
	return raw, raw != ""
}
