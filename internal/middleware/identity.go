package middleware

// identity.go holds the helpers that move the authenticated identity in and
// out of the Echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/utils"
)

const identityKey = "identity"

func setIdentity(c echo.Context, id utils.Identity) {
	c.Set(identityKey, id)
	c.Set("user_id", id.UserID)
}

// CurrentIdentity returns the identity decoded by JWTAuth or OptionalJWT.
func CurrentIdentity(c echo.Context) (utils.Identity, bool) {
	id, ok := c.Get(identityKey).(utils.Identity)
	return id, ok
}

// userID returns the caller's id, or "anon" for unauthenticated requests.
func userID(c echo.Context) string {
	if id, ok := CurrentIdentity(c); ok && id.UserID != "" {
		return id.UserID
	}
	return "anon"
}
