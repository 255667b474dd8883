package transport

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"roloApp/internal/modules/users/application/port"
	"roloApp/internal/modules/users/domain"
	"roloApp/internal/shared/apperrors"
	"roloApp/internal/shared/auth"
	"roloApp/internal/shared/httputil"
)

const userContextKey = "authenticated-user"

// RequireAuth validates the session token and resolves the acting user before
// the handler runs.
func RequireAuth(validator auth.TokenValidator, users port.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.ExtractToken(c.Request(), "token")
			claims, err := validator.Validate(token)
			if err != nil {
				return httputil.Respond(err)
			}
			user, err := users.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				slog.Warn("token subject not resolvable", slog.String("userId", claims.Subject), slog.Any("error", err))
				return httputil.Respond(err)
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(userContextKey).(*domain.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}
