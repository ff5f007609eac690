package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/juniorseniors/users-api/internal/api/handler"
	"github.com/juniorseniors/users-api/internal/core/domain"
)

// Authenticator resolves a bearer token to the user currently holding it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth requires a valid "Bearer <token>" header and injects the owning user
// into context under handler.UserContextKey. Every failure is reported as
// domain.ErrUnauthorized so the error handler renders a uniform 401.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return domain.ErrUnauthorized
			}

			user, err := auth.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(handler.UserContextKey, user)
			return next(c)
		}
	}
}
