package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/juniorseniors/users-api/internal/core/domain"
)

// UserContextKey is where the Auth middleware stores the authenticated user.
const UserContextKey = "user"

// ctxUser returns the user injected by the Auth middleware. Its absence means
// the route was mounted without the middleware, which is treated as an
// unauthenticated request.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(UserContextKey).(*domain.User)
	if !ok || user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
