// Package middleware holds the echo middleware for the HTTP API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"taskhub/backend/internal/security"
)

const principalKey = "principal"

// Auth authenticates requests with a Bearer access token and stores the
// resulting Principal on the echo context.
type Auth struct {
	codec *security.TokenCodec
}

func NewAuth(codec *security.TokenCodec) *Auth {
	return &Auth{codec: codec}
}

// RequireAuth rejects requests without a valid access token. Refresh tokens
// are not accepted here; they are only good for /api/auth/refresh.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || raw == "" || raw == header {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		claims, err := m.codec.Decode(raw)
		if err != nil || claims.Type != security.TokenTypeAccess {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		c.Set(principalKey, security.Principal{UserID: claims.UserID, Claims: *claims})
		return next(c)
	}
}

// GetPrincipal returns the Principal set by RequireAuth.
func GetPrincipal(c echo.Context) (security.Principal, bool) {
	p, ok := c.Get(principalKey).(security.Principal)
	return p, ok
}
