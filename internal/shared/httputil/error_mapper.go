package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"roloApp/internal/shared/apperrors"
	"roloApp/internal/shared/auth"
)

// HTTPErrorInfo contains the HTTP status code and message for an error.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

// MapError translates the shared error taxonomy into HTTP statuses. Unknown
// errors collapse into a generic 500 so collaborator failure details never
// leak to callers.
func MapError(err error) HTTPErrorInfo {
	switch {
	case err == nil:
		return HTTPErrorInfo{Status: http.StatusOK}
	case errors.Is(err, context.DeadlineExceeded):
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	case errors.Is(err, context.Canceled):
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	case errors.Is(err, apperrors.ErrUnauthenticated),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return HTTPErrorInfo{Status: http.StatusUnauthorized, Message: "unauthenticated"}
	case errors.Is(err, apperrors.ErrForbidden):
		return HTTPErrorInfo{Status: http.StatusForbidden, Message: "forbidden"}
	case errors.Is(err, apperrors.ErrValidation):
		return HTTPErrorInfo{Status: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, apperrors.ErrNotFound):
		return HTTPErrorInfo{Status: http.StatusNotFound, Message: "not found"}
	default:
		return HTTPErrorInfo{Status: http.StatusInternalServerError, Message: "internal server error"}
	}
}

// Respond converts an error into an echo HTTP error response.
func Respond(err error) *echo.HTTPError {
	info := MapError(err)
	return echo.NewHTTPError(info.Status, info.Message)
}
